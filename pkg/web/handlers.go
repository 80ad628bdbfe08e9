// Package web exposes the REST surface of the process tracker.
package web

import (
	"net/http"

	"github.com/bdedica/tramite/pkg/engine"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/bdedica/tramite/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	engine      *engine.Engine
	graph       *engine.TransitionGraph
	templates   *services.TemplateService
	stages      *services.StageService
	fieldModels *services.FieldModelService
	processes   *services.ProcessService
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewAPIHandlers(
	workflowEngine *engine.Engine,
	graph *engine.TransitionGraph,
	templates *services.TemplateService,
	stages *services.StageService,
	fieldModels *services.FieldModelService,
	processes *services.ProcessService,
	p persistence.Persistence,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		engine:      workflowEngine,
		graph:       graph,
		templates:   templates,
		stages:      stages,
		fieldModels: fieldModels,
		processes:   processes,
		persistence: p,
		validator:   validate,
	}
}

// bindBody parses the JSON body into dst and runs struct validation.
func (h *APIHandlers) bindBody(c fiber.Ctx, dst any) error {
	err := c.Bind().Body(dst)
	if err != nil {
		return err
	}

	return h.validator.Struct(dst)
}

// Templates

func (h *APIHandlers) CreateTemplate(c fiber.Ctx) error {
	var params services.TemplateParams

	err := c.Bind().Body(&params)
	if err != nil {
		return badRequest(c, "validation_error", "invalid request body")
	}

	template, err := h.templates.Create(c.Context(), params)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(template)
}

func (h *APIHandlers) ListTemplates(c fiber.Ctx) error {
	templates, err := h.templates.List(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(templates)
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	template, err := h.templates.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(template)
}

func (h *APIHandlers) GetTemplateFull(c fiber.Ctx) error {
	view, err := h.templates.FullView(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) GetTemplateGraph(c fiber.Ctx) error {
	view, err := h.graph.TemplateGraph(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{
		"template_id": view.TemplateID,
		"stages":      view.Stages,
		"edges":       view.Edges,
		"terminals":   view.Terminals,
		"cycle":       view.Validate(),
	})
}

func (h *APIHandlers) UpdateTemplate(c fiber.Ctx) error {
	var params services.TemplateParams

	err := c.Bind().Body(&params)
	if err != nil {
		return badRequest(c, "validation_error", "invalid request body")
	}

	template, err := h.templates.Update(c.Context(), c.Params("id"), params)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(template)
}

func (h *APIHandlers) DeleteTemplate(c fiber.Ctx) error {
	err := h.templates.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Stages

func (h *APIHandlers) CreateStage(c fiber.Ctx) error {
	var params services.StageParams

	err := c.Bind().Body(&params)
	if err != nil {
		return badRequest(c, "validation_error", "invalid request body")
	}

	stage, err := h.stages.Create(c.Context(), c.Params("id"), params)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(stage)
}

func (h *APIHandlers) ListStages(c fiber.Ctx) error {
	stages, err := h.stages.ListByTemplate(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(stages)
}

func (h *APIHandlers) GetStage(c fiber.Ctx) error {
	stage, err := h.stages.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(stage)
}

func (h *APIHandlers) UpdateStage(c fiber.Ctx) error {
	var params services.StageParams

	err := c.Bind().Body(&params)
	if err != nil {
		return badRequest(c, "validation_error", "invalid request body")
	}

	stage, err := h.stages.Update(c.Context(), c.Params("id"), params)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(stage)
}

func (h *APIHandlers) DeleteStage(c fiber.Ctx) error {
	err := h.stages.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) LinkStages(c fiber.Ctx) error {
	var req LinkStagesRequest

	err := h.bindBody(c, &req)
	if err != nil {
		return badRequest(c, "validation_error", "destination_stage_id is required")
	}

	transition, err := h.graph.Link(c.Context(), c.Params("id"), req.DestinationStageID)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(transition)
}

func (h *APIHandlers) UnlinkStages(c fiber.Ctx) error {
	err := h.graph.Unlink(c.Context(), c.Params("transitionId"))
	if err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Field models

func (h *APIHandlers) CreateFieldModel(c fiber.Ctx) error {
	var params services.FieldModelParams

	err := c.Bind().Body(&params)
	if err != nil {
		return badRequest(c, "validation_error", "invalid request body")
	}

	fieldModel, err := h.fieldModels.Create(c.Context(), c.Params("id"), params)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fieldModel)
}

func (h *APIHandlers) ListFieldModels(c fiber.Ctx) error {
	fieldModels, err := h.fieldModels.ListByStage(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fieldModels)
}

func (h *APIHandlers) UpdateFieldModel(c fiber.Ctx) error {
	var params services.FieldModelParams

	err := c.Bind().Body(&params)
	if err != nil {
		return badRequest(c, "validation_error", "invalid request body")
	}

	fieldModel, err := h.fieldModels.Update(c.Context(), c.Params("id"), params)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fieldModel)
}

func (h *APIHandlers) DeleteFieldModel(c fiber.Ctx) error {
	err := h.fieldModels.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Processes and executions

func (h *APIHandlers) StartProcess(c fiber.Ctx) error {
	var req StartProcessRequest

	err := h.bindBody(c, &req)
	if err != nil {
		return badRequest(c, "validation_error", "template_id is required")
	}

	result, err := h.engine.StartProcess(c.Context(), req.TemplateID, principalFrom(c).UserID)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *APIHandlers) ListProcesses(c fiber.Ctx) error {
	processes, err := h.processes.List(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(processes)
}

func (h *APIHandlers) GetProcessHistory(c fiber.Ctx) error {
	history, err := h.processes.History(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(history)
}

func (h *APIHandlers) CompleteExecution(c fiber.Ctx) error {
	var req CompleteExecutionRequest

	err := h.bindBody(c, &req)
	if err != nil {
		return badRequest(c, "validation_error", "invalid request body")
	}

	result, err := h.engine.CompleteExecution(c.Context(), c.Params("id"), req.toEngineRequest(principalFrom(c).UserID))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetInbox(c fiber.Ctx) error {
	tasks, err := h.engine.InboxForRole(c.Context(), principalFrom(c).Role)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(tasks)
}

func (h *APIHandlers) GetTaskDetail(c fiber.Ctx) error {
	detail, err := h.engine.GetTaskDetail(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(detail)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.persistence.HealthCheck(c.Context())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"status":  "unhealthy",
			"message": "persistence is unreachable",
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}
