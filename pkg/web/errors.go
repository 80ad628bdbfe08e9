package web

import (
	"errors"

	"github.com/bdedica/tramite/pkg/engine"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/bdedica/tramite/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusNotFound).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusConflict).
		WithInstance(c.Path()).
		WithType("conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func unauthorized(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusUnauthorized).
		WithInstance(c.Path()).
		WithType("unauthorized").
		WithDetail(detail)

	return c.Status(fiber.StatusUnauthorized).JSON(problem)
}

func forbidden(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusForbidden).
		WithInstance(c.Path()).
		WithType("forbidden").
		WithDetail(detail)

	return c.Status(fiber.StatusForbidden).JSON(problem)
}

func internalError(c fiber.Ctx) error {
	problem := problems.NewStatusProblem(fiber.StatusInternalServerError).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithDetail("unexpected failure")

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleError maps the error taxonomy onto problem responses. Store
// internals never reach the response body.
func handleError(c fiber.Ctx, err error) error {
	var validationErr *engine.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return badRequest(c, "validation_failed", validationErr.Error())
	case services.IsInvalidInput(err):
		return badRequest(c, "validation_error", err.Error())
	case engine.IsInvalidTemplateConfiguration(err):
		return badRequest(c, "invalid_template_configuration", "template has no entry stage")
	case persistence.IsNotFound(err):
		return notFound(c, "resource not found")
	case persistence.IsConflict(err):
		return conflict(c, "execution is no longer pending")
	case errors.Is(err, persistence.ErrTransitionExists):
		return conflict(c, "origin stage already has an outgoing transition")
	case persistence.IsIntegrityViolation(err):
		return badRequest(c, "integrity_violation", "request violates a data constraint")
	default:
		return internalError(c)
	}
}
