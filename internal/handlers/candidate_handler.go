package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/services"
)

type CandidateHandler struct {
	index services.SkillIndex
}

// NewCandidateHandler accepts a nil index; searches then report the index as disabled.
func NewCandidateHandler(index services.SkillIndex) *CandidateHandler {
	return &CandidateHandler{index: index}
}

// HandleSearch handles GET /candidates?skills=a,b&limit=n
func (h *CandidateHandler) HandleSearch(c *fiber.Ctx) error {
	if h.index == nil {
		return respondError(c, services.ErrIndexDisabled)
	}

	var wanted []string
	for _, s := range strings.Split(c.Query("skills"), ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			wanted = append(wanted, s)
		}
	}
	if len(wanted) == 0 {
		return badRequest(c, "skills query parameter is required")
	}

	matches, err := h.index.Search(c.UserContext(), wanted, c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.CandidateSearchResponse{
		Success:    true,
		Skills:     wanted,
		Candidates: matches,
	})
}
