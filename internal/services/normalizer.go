package services

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"unicode"

	"google.golang.org/genai"

	"alfredoptarigan/skill-analyzer/internal/models"
)

// Outcome is the canonical analysis derived from one upstream reply.
type Outcome struct {
	MatchingPercentage  float64               `json:"matching_percentage"`
	PositionSuitability string                `json:"position_suitability"`
	AnalysisText        string                `json:"analysis_text"`
	Recommendation      models.Recommendation `json:"recommendation"`
}

// Normalize turns a raw generateContent body into an Outcome. Only an unreadable
// envelope, a missing payload or a payload that is not a JSON object fail;
// everything else is defaulted.
func Normalize(raw []byte) (Outcome, error) {
	envelope, err := decodeEnvelope(raw)
	if err != nil {
		return Outcome{}, err
	}

	text, err := payloadText(envelope, raw)
	if err != nil {
		return Outcome{}, err
	}

	fields, err := parsePayload(stripFences(text), raw)
	if err != nil {
		return Outcome{}, err
	}

	return canonicalize(fields), nil
}

func decodeEnvelope(raw []byte) (*genai.GenerateContentResponse, error) {
	var envelope genai.GenerateContentResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &UpstreamFailure{Kind: EnvelopeMalformed, Body: raw, Err: err}
	}
	if len(envelope.Candidates) == 0 || envelope.Candidates[0] == nil {
		return nil, &UpstreamFailure{Kind: EnvelopeMalformed, Body: raw, Err: errors.New("envelope has no candidates")}
	}
	return &envelope, nil
}

func payloadText(envelope *genai.GenerateContentResponse, raw []byte) (string, error) {
	content := envelope.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", &UpstreamFailure{Kind: PayloadMissing, Body: raw, Err: errors.New("candidate has no content parts")}
	}
	for _, part := range content.Parts {
		if part == nil {
			return "", &UpstreamFailure{Kind: PayloadMissing, Body: raw, Err: errors.New("candidate has a null content part")}
		}
	}

	text := envelope.Text()
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamFailure{Kind: PayloadMissing, Body: raw, Err: errors.New("candidate text is empty")}
	}
	return text, nil
}

// stripFences removes a surrounding markdown code fence, with or without a language tag.
func stripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimLeftFunc(cleaned, unicode.IsLetter)
	cleaned = strings.TrimSpace(cleaned)
	if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}

// parsePayload decodes a JSON object, retrying on the outermost {...} span
// when the object is wrapped in prose.
func parsePayload(text string, raw []byte) (map[string]any, error) {
	fields, err := decodeObject(text)
	if err == nil {
		return fields, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if retried, retryErr := decodeObject(text[start : end+1]); retryErr == nil {
			return retried, nil
		}
	}

	return nil, &UpstreamFailure{Kind: PayloadNotJSON, Body: raw, Text: text, Err: err}
}

func decodeObject(text string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("payload is not a JSON object")
	}
	return fields, nil
}

func canonicalize(fields map[string]any) Outcome {
	analysis := coerceString(fields["gemini_analysis"])
	if analysis == "" {
		analysis = coerceString(fields["analysis"])
	}

	return Outcome{
		MatchingPercentage:  coercePercentage(fields["matching_percentage"]),
		PositionSuitability: orDefault(coerceString(fields["position_suitability"]), models.DefaultPositionSuitability),
		AnalysisText:        orDefault(analysis, models.DefaultAnalysisText),
		Recommendation:      coerceRecommendation(fields["recommendation"]),
	}
}

// coercePercentage accepts JSON numbers in [0,100] and passes them through
// unrounded; the numeric(5,2) column rounds on write. Anything else is 0.
func coercePercentage(v any) float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > 100 {
		return 0
	}
	return f
}

func coerceRecommendation(v any) models.Recommendation {
	label := coerceString(v)
	for _, tier := range []models.Recommendation{
		models.RecommendationHigh,
		models.RecommendationModerate,
		models.RecommendationLow,
	} {
		if strings.EqualFold(label, string(tier)) {
			return tier
		}
	}
	return models.RecommendationModerate
}

// coerceString only accepts strings; other JSON types count as missing.
func coerceString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
