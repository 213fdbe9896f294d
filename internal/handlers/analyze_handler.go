package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/services"
)

type AnalyzeHandler struct {
	analyzer services.Analyzer
}

func NewAnalyzeHandler(analyzer services.Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

// HandleAnalyze handles POST /analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	if req.DocumentID == "" {
		return badRequest(c, "document_id is required")
	}

	if req.Position == "" {
		return badRequest(c, "position is required")
	}

	analysis, err := h.analyzer.Analyze(c.UserContext(), req.DocumentID, req.Position)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.AnalysisResponse{
		Success: true,
		Result:  analysis,
	})
}
