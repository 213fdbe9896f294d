package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/skill-analyzer/internal/models"
)

// MemoryExtractionRepository keeps extractions in process memory.
type MemoryExtractionRepository struct {
	mu   sync.RWMutex
	rows map[string]models.Extraction
}

func NewMemoryExtractionRepository() *MemoryExtractionRepository {
	return &MemoryExtractionRepository{rows: make(map[string]models.Extraction)}
}

func (r *MemoryExtractionRepository) Upsert(_ context.Context, documentID string, skills []string) error {
	stored := make(models.SkillList, len(skills))
	copy(stored, skills)

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	row, ok := r.rows[documentID]
	if !ok {
		row = models.Extraction{DocumentID: documentID, CreatedAt: now}
	}
	row.MatchedSkills = stored
	row.UpdatedAt = now
	r.rows[documentID] = row
	return nil
}

func (r *MemoryExtractionRepository) FindByDocumentID(_ context.Context, documentID string) (*models.Extraction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[documentID]
	if !ok {
		return nil, ErrNotFound
	}
	row.MatchedSkills = append(models.SkillList{}, row.MatchedSkills...)
	return &row, nil
}

// MemoryAnalysisRepository keeps analyses in insertion order.
type MemoryAnalysisRepository struct {
	mu   sync.RWMutex
	rows []models.Analysis
}

func NewMemoryAnalysisRepository() *MemoryAnalysisRepository {
	return &MemoryAnalysisRepository{}
}

func (r *MemoryAnalysisRepository) Append(_ context.Context, analysis *models.Analysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *analysis)
	return nil
}

func (r *MemoryAnalysisRepository) FindByDocumentID(_ context.Context, documentID string, limit int) ([]models.Analysis, error) {
	return r.filter(limit, func(a models.Analysis) bool { return a.DocumentID == documentID }), nil
}

func (r *MemoryAnalysisRepository) FindTop(_ context.Context, minPercentage float64, limit int) ([]models.Analysis, error) {
	return r.filter(limit, func(a models.Analysis) bool { return a.MatchingPercentage > minPercentage }), nil
}

// Len reports the number of stored rows.
func (r *MemoryAnalysisRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

func (r *MemoryAnalysisRepository) filter(limit int, keep func(models.Analysis) bool) []models.Analysis {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Analysis, 0)
	for i := len(r.rows) - 1; i >= 0; i-- {
		if keep(r.rows[i]) {
			out = append(out, r.rows[i])
		}
	}
	// reverse insertion order already gives newest first; keep it stable for equal timestamps
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if n := normalizeLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out
}
