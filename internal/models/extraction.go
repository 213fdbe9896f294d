package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SkillList is stored as a JSON array column.
type SkillList []string

func (s SkillList) Value() (driver.Value, error) {
	if s == nil {
		s = SkillList{}
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode skill list: %w", err)
	}
	return string(b), nil
}

func (s *SkillList) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = SkillList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported skill list type %T", value)
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode skill list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*s = out
	return nil
}

// Extraction is the latest skill set extracted for a document. One row per DocumentID.
type Extraction struct {
	DocumentID    string    `gorm:"type:text;primaryKey" json:"document_id"`
	MatchedSkills SkillList `gorm:"type:jsonb;not null" json:"matched_skills"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Extraction) TableName() string {
	return "extracted_skills"
}
