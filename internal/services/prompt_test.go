package services

import (
	"strings"
	"testing"

	"alfredoptarigan/skill-analyzer/internal/models"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	prompt := BuildAnalysisPrompt([]string{"python", "aws"}, "Backend Engineer")

	for _, want := range []string{
		"python, aws",
		"Backend Engineer",
		`"matching_percentage"`,
		`"position_suitability"`,
		`"gemini_analysis"`,
		`"recommendation"`,
		"High, Moderate, Low",
		"Return ONLY a JSON object",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}
}

func TestBuildAnalysisPromptNoSkills(t *testing.T) {
	prompt := BuildAnalysisPrompt(nil, "Data Engineer")
	if !strings.Contains(prompt, "(none detected)") {
		t.Fatalf("expected placeholder for empty skill set")
	}
}

func TestNewAnalysisRequest(t *testing.T) {
	extraction := &models.Extraction{DocumentID: "cv.pdf", MatchedSkills: models.SkillList{"go"}}
	req := NewAnalysisRequest(extraction, "  SRE  ")

	if req.DocumentID != "cv.pdf" || req.Position != "SRE" {
		t.Fatalf("unexpected request %+v", req)
	}

	req.Skills[0] = "mutated"
	if extraction.MatchedSkills[0] != "go" {
		t.Fatalf("request aliased extraction skills")
	}
}
