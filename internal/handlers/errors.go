package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/repositories"
	"alfredoptarigan/skill-analyzer/internal/services"
)

// StatusFor maps a pipeline error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidDocument),
		errors.Is(err, services.ErrEmptyDocument):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNoPriorExtraction),
		errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrAnalysisInProgress):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrUpstreamUnavailable),
		errors.Is(err, services.ErrUpstreamMalformed):
		return fiber.StatusBadGateway
	case errors.Is(err, services.ErrStoreFailure),
		errors.Is(err, services.ErrIndexDisabled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	body := models.ErrorResponse{Error: err.Error()}
	if f, ok := services.AsUpstreamFailure(err); ok {
		body.ErrorKind = string(f.Kind)
		body.UpstreamStatus = f.StatusCode
	}
	return c.Status(StatusFor(err)).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: msg})
}

// documentParam returns the unescaped :document_id route parameter.
func documentParam(c *fiber.Ctx) string {
	raw := c.Params("document_id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}
