package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/skill-analyzer/internal/logger"
	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/repositories"
	"alfredoptarigan/skill-analyzer/internal/skills"
)

type ExtractInput struct {
	DocumentID string
	Filename   string
	Data       []byte
}

type ExtractionService interface {
	Extract(ctx context.Context, in ExtractInput) (*models.Extraction, error)
	ExtractText(ctx context.Context, documentID, text string) (*models.Extraction, error)
	Get(ctx context.Context, documentID string) (*models.Extraction, error)
}

type ExtractionOption func(*extractionService)

// WithArchive keeps the uploaded bytes next to the extraction.
func WithArchive(archive DocumentArchive) ExtractionOption {
	return func(s *extractionService) { s.archive = archive }
}

// WithIndex mirrors every stored extraction into a SkillIndex.
func WithIndex(index SkillIndex) ExtractionOption {
	return func(s *extractionService) { s.index = index }
}

type extractionService struct {
	extractor *skills.Extractor
	repo      repositories.ExtractionRepository
	archive   DocumentArchive
	index     SkillIndex
	log       *zap.Logger
}

func NewExtractionService(
	extractor *skills.Extractor,
	repo repositories.ExtractionRepository,
	log *zap.Logger,
	opts ...ExtractionOption,
) ExtractionService {
	s := &extractionService{
		extractor: extractor,
		repo:      repo,
		log:       logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract implements ExtractionService. Input errors leave the store untouched.
func (s *extractionService) Extract(ctx context.Context, in ExtractInput) (*models.Extraction, error) {
	documentID := strings.TrimSpace(in.DocumentID)
	if documentID == "" {
		documentID = strings.TrimSpace(filepath.Base(in.Filename))
	}
	if documentID == "" || documentID == "." {
		return nil, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}

	if ext := strings.ToLower(filepath.Ext(in.Filename)); ext != ".pdf" {
		return nil, fmt.Errorf("%w: invalid file extension %q", ErrInvalidDocument, ext)
	}

	text, err := TextOf(in.Data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyDocument
	}

	matched := s.extractor.Extract(text)

	archived := false
	if s.archive != nil {
		if _, err := s.archive.Save(documentID, in.Data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
		}
		archived = true
	}

	extraction, err := s.store(ctx, documentID, matched)
	if err != nil {
		if archived {
			if delErr := s.archive.Delete(documentID); delErr != nil {
				s.log.Warn("failed to remove archived document", zap.String(logger.FieldDocumentID, documentID), zap.Error(delErr))
			}
		}
		return nil, err
	}
	return extraction, nil
}

// ExtractText implements ExtractionService for callers that already hold text.
func (s *extractionService) ExtractText(ctx context.Context, documentID, text string) (*models.Extraction, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	return s.store(ctx, documentID, s.extractor.Extract(text))
}

// Get implements ExtractionService.
func (s *extractionService) Get(ctx context.Context, documentID string) (*models.Extraction, error) {
	extraction, err := s.repo.FindByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return extraction, nil
}

func (s *extractionService) store(ctx context.Context, documentID string, matched []string) (*models.Extraction, error) {
	if err := s.repo.Upsert(ctx, documentID, matched); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	s.log.Info("skills extracted",
		zap.String(logger.FieldDocumentID, documentID),
		zap.Int("matched", len(matched)),
	)

	if s.index != nil {
		if err := s.index.Index(ctx, documentID, matched); err != nil {
			s.log.Warn("failed to index skills", zap.String(logger.FieldDocumentID, documentID), zap.Error(err))
		}
	}

	return &models.Extraction{DocumentID: documentID, MatchedSkills: models.SkillList(matched)}, nil
}
