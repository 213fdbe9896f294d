package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/skill-analyzer/internal/models"
)

// AnalysisRepository is append-only. There is no uniqueness on (document, position).
type AnalysisRepository interface {
	Append(ctx context.Context, analysis *models.Analysis) error
	FindByDocumentID(ctx context.Context, documentID string, limit int) ([]models.Analysis, error)
	FindTop(ctx context.Context, minPercentage float64, limit int) ([]models.Analysis, error)
}

const defaultListLimit = 50

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Append implements AnalysisRepository.
func (r *analysisRepository) Append(ctx context.Context, analysis *models.Analysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to append analysis: %w", err)
	}
	return nil
}

// FindByDocumentID implements AnalysisRepository. Newest first.
func (r *analysisRepository) FindByDocumentID(ctx context.Context, documentID string, limit int) ([]models.Analysis, error) {
	var rows []models.Analysis
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find analyses: %w", err)
	}
	return rows, nil
}

// FindTop implements AnalysisRepository. Newest first.
func (r *analysisRepository) FindTop(ctx context.Context, minPercentage float64, limit int) ([]models.Analysis, error) {
	var rows []models.Analysis
	err := r.db.WithContext(ctx).
		Where("matching_percentage > ?", minPercentage).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find top analyses: %w", err)
	}
	return rows, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}
