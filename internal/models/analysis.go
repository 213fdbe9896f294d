package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Recommendation string

const (
	RecommendationHigh     Recommendation = "High"
	RecommendationModerate Recommendation = "Moderate"
	RecommendationLow      Recommendation = "Low"
)

const (
	DefaultPositionSuitability = "Not Determined"
	DefaultAnalysisText        = "No analysis provided."
)

// Analysis is one appended analysis row. Rows are never updated.
type Analysis struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID          string          `gorm:"type:text;not null;index" json:"document_id"`
	Position            string          `gorm:"type:text;not null" json:"position"`
	MatchingPercentage  float64         `gorm:"type:numeric(5,2);not null;default:0" json:"matching_percentage"`
	PositionSuitability string          `gorm:"type:text" json:"position_suitability"`
	AnalysisText        string          `gorm:"type:text" json:"analysis_text"`
	Recommendation      Recommendation  `gorm:"type:text;not null" json:"recommendation"`
	Result              json.RawMessage `gorm:"type:jsonb" json:"result,omitempty"`
	RawResponse         json.RawMessage `gorm:"type:jsonb" json:"-"`
	CreatedAt           time.Time       `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (Analysis) TableName() string {
	return "analyzed_skills"
}
