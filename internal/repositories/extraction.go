package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/skill-analyzer/internal/models"
)

type ExtractionRepository interface {
	// Upsert replaces the stored skill list for documentID.
	Upsert(ctx context.Context, documentID string, skills []string) error
	FindByDocumentID(ctx context.Context, documentID string) (*models.Extraction, error)
}

type extractionRepository struct {
	db *gorm.DB
}

func NewExtractionRepository(db *gorm.DB) ExtractionRepository {
	return &extractionRepository{db: db}
}

func upsertExtractionClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"matched_skills", "updated_at"}),
	}
}

// Upsert implements ExtractionRepository. A single INSERT ... ON CONFLICT statement,
// so readers observe either the previous or the new skill list.
func (r *extractionRepository) Upsert(ctx context.Context, documentID string, skills []string) error {
	now := time.Now()
	row := &models.Extraction{
		DocumentID:    documentID,
		MatchedSkills: models.SkillList(skills),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := r.db.WithContext(ctx).Clauses(upsertExtractionClause()).Create(row).Error; err != nil {
		return fmt.Errorf("failed to upsert extraction: %w", err)
	}
	return nil
}

// FindByDocumentID implements ExtractionRepository.
func (r *extractionRepository) FindByDocumentID(ctx context.Context, documentID string) (*models.Extraction, error) {
	var row models.Extraction
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find extraction: %w", err)
	}
	return &row, nil
}
