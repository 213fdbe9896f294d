package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/skill-analyzer/internal/models"
)

// AnalysisRequest is built per analysis call and never stored.
type AnalysisRequest struct {
	DocumentID string
	Position   string
	Skills     []string
}

func NewAnalysisRequest(extraction *models.Extraction, position string) AnalysisRequest {
	skills := make([]string, len(extraction.MatchedSkills))
	copy(skills, extraction.MatchedSkills)

	return AnalysisRequest{
		DocumentID: extraction.DocumentID,
		Position:   strings.TrimSpace(position),
		Skills:     skills,
	}
}

// Prompt renders the request for the reasoning service.
func (r AnalysisRequest) Prompt() string {
	return BuildAnalysisPrompt(r.Skills, r.Position)
}

// BuildAnalysisPrompt asks for a bare JSON object with the four analysis fields.
func BuildAnalysisPrompt(skills []string, position string) string {
	skillList := "(none detected)"
	if len(skills) > 0 {
		skillList = strings.Join(skills, ", ")
	}

	return fmt.Sprintf(`You are an expert technical recruiter assessing how well a candidate fits a job position.

CANDIDATE SKILLS (extracted from the resume):
%s

TARGET POSITION:
%s

Assess the candidate's suitability for the position based only on the skills above.

Return ONLY a JSON object with exactly these fields:
{
  "matching_percentage": <number between 0 and 100>,
  "position_suitability": "<one sentence verdict on suitability for the position>",
  "gemini_analysis": "<3-5 sentences covering strengths and missing skills>",
  "recommendation": "<one of: %s, %s, %s>"
}

Do not wrap the JSON in code fences. Do not add any text before or after the JSON object.`,
		skillList, position,
		models.RecommendationHigh, models.RecommendationModerate, models.RecommendationLow)
}
