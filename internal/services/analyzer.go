package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/skill-analyzer/internal/logger"
	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/repositories"
)

type Analyzer interface {
	Analyze(ctx context.Context, documentID, position string) (*models.Analysis, error)
}

type analyzer struct {
	extractions repositories.ExtractionRepository
	analyses    repositories.AnalysisRepository
	client      ReasoningClient
	guard       InflightGuard
	log         *zap.Logger
}

// NewAnalyzer wires the analysis pipeline. A nil guard means an in-process guard.
func NewAnalyzer(
	extractions repositories.ExtractionRepository,
	analyses repositories.AnalysisRepository,
	client ReasoningClient,
	guard InflightGuard,
	log *zap.Logger,
) Analyzer {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	return &analyzer{
		extractions: extractions,
		analyses:    analyses,
		client:      client,
		guard:       guard,
		log:         logger.OrNop(log),
	}
}

// Analyze implements Analyzer. Nothing is written unless every stage succeeds.
func (a *analyzer) Analyze(ctx context.Context, documentID, position string) (*models.Analysis, error) {
	documentID = strings.TrimSpace(documentID)
	position = strings.TrimSpace(position)
	if documentID == "" || position == "" {
		return nil, fmt.Errorf("%w: document_id and position are required", ErrInvalidInput)
	}

	log := a.log.With(logger.DocumentFields(documentID, position)...)

	release, ok, err := a.guard.Acquire(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if !ok {
		return nil, ErrAnalysisInProgress
	}
	defer release()

	extraction, err := a.extractions.FindByDocumentID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoPriorExtraction
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	request := NewAnalysisRequest(extraction, position)

	log.Info("requesting analysis", zap.Int("skills", len(request.Skills)))
	start := time.Now()

	raw, err := a.client.Generate(ctx, request.Prompt())
	if err != nil {
		log.Warn("reasoning call failed", zap.Error(err))
		return nil, err
	}

	outcome, err := Normalize(raw)
	if err != nil {
		log.Warn("reasoning response rejected",
			zap.Error(err),
			zap.String("body_preview", logger.TruncateForLog(string(raw), 200)),
		)
		return nil, err
	}

	analysis, err := newAnalysis(request, outcome, raw)
	if err != nil {
		return nil, err
	}

	if err := a.analyses.Append(ctx, analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	log.Info("analysis stored",
		zap.String("analysis_id", analysis.ID.String()),
		zap.Float64("matching_percentage", analysis.MatchingPercentage),
		zap.String("recommendation", string(analysis.Recommendation)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return analysis, nil
}

type canonicalResult struct {
	DocumentID string `json:"document_id"`
	Position   string `json:"position"`
	Outcome
}

func newAnalysis(request AnalysisRequest, outcome Outcome, raw []byte) (*models.Analysis, error) {
	result, err := json.Marshal(canonicalResult{
		DocumentID: request.DocumentID,
		Position:   request.Position,
		Outcome:    outcome,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis result: %w", err)
	}

	return &models.Analysis{
		ID:                  uuid.New(),
		DocumentID:          request.DocumentID,
		Position:            request.Position,
		MatchingPercentage:  outcome.MatchingPercentage,
		PositionSuitability: outcome.PositionSuitability,
		AnalysisText:        outcome.AnalysisText,
		Recommendation:      outcome.Recommendation,
		Result:              result,
		RawResponse:         json.RawMessage(raw),
		CreatedAt:           time.Now(),
	}, nil
}
