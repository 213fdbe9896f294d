package handlers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/services"
)

type ExtractHandler struct {
	extraction  services.ExtractionService
	maxFileSize int64
}

func NewExtractHandler(extraction services.ExtractionService, maxFileSize int64) *ExtractHandler {
	return &ExtractHandler{
		extraction:  extraction,
		maxFileSize: maxFileSize,
	}
}

// HandleExtract handles POST /extract
func (h *ExtractHandler) HandleExtract(c *fiber.Ctx) error {
	file, err := c.FormFile("pdf_file")
	if err != nil {
		return badRequest(c, "pdf_file is required")
	}

	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return badRequest(c, fmt.Sprintf("file too large. Max size: %d bytes", h.maxFileSize))
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, "failed to read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return badRequest(c, "failed to read uploaded file")
	}

	extraction, err := h.extraction.Extract(c.UserContext(), services.ExtractInput{
		DocumentID: c.FormValue("document_id"),
		Filename:   file.Filename,
		Data:       data,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.ExtractResponse{
		Success:       true,
		DocumentID:    extraction.DocumentID,
		MatchedSkills: extraction.MatchedSkills,
	})
}
