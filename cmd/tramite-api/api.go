// Package main provides the tramite API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/bdedica/tramite/pkg/access"
	"github.com/bdedica/tramite/pkg/engine"
	"github.com/bdedica/tramite/pkg/eventbus"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/bdedica/tramite/pkg/services"
	"github.com/bdedica/tramite/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(logger *slog.Logger, p persistence.Persistence, eventBus eventbus.EventBus) *API {
	return &API{
		logger:      logger,
		persistence: p,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowEngine := engine.New(a.persistence, a.eventBus, a.logger)
	graph := engine.NewTransitionGraph(a.persistence, a.logger)
	templates := services.NewTemplateService(a.persistence, a.logger)
	stages := services.NewStageService(a.persistence, a.logger)
	fieldModels := services.NewFieldModelService(a.persistence, a.logger)
	processes := services.NewProcessService(a.persistence, a.logger)

	handlers := web.NewAPIHandlers(workflowEngine, graph, templates, stages, fieldModels, processes, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())
	app.Get("/health", handlers.HealthCheck)

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Tramite API")
	})

	api := app.Group("/", web.WithPrincipal())

	t := api.Group("/templates")
	t.Post("/", handlers.CreateTemplate, web.RequireAction(access.ActionManageTemplates))
	t.Get("/", handlers.ListTemplates)
	t.Get("/:id", handlers.GetTemplate)
	t.Get("/:id/full", handlers.GetTemplateFull)
	t.Get("/:id/graph", handlers.GetTemplateGraph)
	t.Patch("/:id", handlers.UpdateTemplate, web.RequireAction(access.ActionManageTemplates))
	t.Delete("/:id", handlers.DeleteTemplate, web.RequireAction(access.ActionManageTemplates))
	t.Post("/:id/stages", handlers.CreateStage, web.RequireAction(access.ActionManageStages))
	t.Get("/:id/stages", handlers.ListStages)

	s := api.Group("/stages")
	s.Get("/:id", handlers.GetStage)
	s.Patch("/:id", handlers.UpdateStage, web.RequireAction(access.ActionManageStages))
	s.Delete("/:id", handlers.DeleteStage, web.RequireAction(access.ActionManageStages))
	s.Post("/:id/link", handlers.LinkStages, web.RequireAction(access.ActionManageStages))
	s.Delete("/:id/link/:transitionId", handlers.UnlinkStages, web.RequireAction(access.ActionManageStages))
	s.Post("/:id/fields", handlers.CreateFieldModel, web.RequireAction(access.ActionManageFields))
	s.Get("/:id/fields", handlers.ListFieldModels)

	f := api.Group("/fields")
	f.Patch("/:id", handlers.UpdateFieldModel, web.RequireAction(access.ActionManageFields))
	f.Delete("/:id", handlers.DeleteFieldModel, web.RequireAction(access.ActionManageFields))

	p := api.Group("/processes")
	p.Post("/start", handlers.StartProcess, web.RequireAction(access.ActionStartProcess))
	p.Get("/", handlers.ListProcesses, web.RequireAction(access.ActionViewProcesses))
	p.Get("/:id/history", handlers.GetProcessHistory, web.RequireAction(access.ActionViewProcesses))

	e := api.Group("/executions")
	e.Get("/inbox", handlers.GetInbox)
	e.Get("/:id", handlers.GetTaskDetail)
	e.Post("/:id/complete", handlers.CompleteExecution, web.RequireAction(access.ActionCompleteExecution))

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
