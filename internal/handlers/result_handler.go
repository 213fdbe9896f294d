package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/repositories"
	"alfredoptarigan/skill-analyzer/internal/services"
)

const defaultTopThreshold = 75

type ResultHandler struct {
	extraction services.ExtractionService
	analyses   repositories.AnalysisRepository
}

func NewResultHandler(extraction services.ExtractionService, analyses repositories.AnalysisRepository) *ResultHandler {
	return &ResultHandler{
		extraction: extraction,
		analyses:   analyses,
	}
}

// HandleGetExtraction handles GET /extractions/:document_id
func (h *ResultHandler) HandleGetExtraction(c *fiber.Ctx) error {
	extraction, err := h.extraction.Get(c.UserContext(), documentParam(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.ExtractResponse{
		Success:       true,
		DocumentID:    extraction.DocumentID,
		MatchedSkills: extraction.MatchedSkills,
	})
}

// HandleGetHistory handles GET /analyses/:document_id
func (h *ResultHandler) HandleGetHistory(c *fiber.Ctx) error {
	rows, err := h.analyses.FindByDocumentID(c.UserContext(), documentParam(c), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.AnalysisListResponse{
		Success:  true,
		Count:    len(rows),
		Analyses: rows,
	})
}

// HandleGetTop handles GET /analyses/top
func (h *ResultHandler) HandleGetTop(c *fiber.Ctx) error {
	minPercentage := c.QueryFloat("min", defaultTopThreshold)
	if minPercentage < 0 || minPercentage > 100 {
		return badRequest(c, "min must be between 0 and 100")
	}

	rows, err := h.analyses.FindTop(c.UserContext(), minPercentage, c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.AnalysisListResponse{
		Success:  true,
		Count:    len(rows),
		Analyses: rows,
	})
}
