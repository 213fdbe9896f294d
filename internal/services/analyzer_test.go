package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/repositories"
)

type stubReasoning struct {
	mu      sync.Mutex
	body    []byte
	err     error
	prompts []string
	block   chan struct{}
}

func (s *stubReasoning) Generate(ctx context.Context, prompt string) ([]byte, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	return s.body, s.err
}

func (s *stubReasoning) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type analyzerFixture struct {
	extractions *repositories.MemoryExtractionRepository
	analyses    *repositories.MemoryAnalysisRepository
	client      *stubReasoning
	analyzer    Analyzer
	logs        *observer.ObservedLogs
}

func newAnalyzerFixture(t *testing.T) *analyzerFixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	f := &analyzerFixture{
		extractions: repositories.NewMemoryExtractionRepository(),
		analyses:    repositories.NewMemoryAnalysisRepository(),
		client:      &stubReasoning{},
		logs:        logs,
	}
	f.analyzer = NewAnalyzer(f.extractions, f.analyses, f.client, nil, zap.New(core))
	return f
}

func TestAnalyzeNoPriorExtraction(t *testing.T) {
	f := newAnalyzerFixture(t)

	_, err := f.analyzer.Analyze(context.Background(), "doc1", "Backend Engineer")
	if !errors.Is(err, ErrNoPriorExtraction) {
		t.Fatalf("expected ErrNoPriorExtraction, got %v", err)
	}
	if f.analyses.Len() != 0 {
		t.Fatalf("expected no analysis rows")
	}
	if f.client.calls() != 0 {
		t.Fatalf("reasoning service must not be called")
	}
}

func TestAnalyzeUpstreamUnavailable(t *testing.T) {
	f := newAnalyzerFixture(t)
	_ = f.extractions.Upsert(context.Background(), "doc1", []string{"python"})
	f.client.err = &UpstreamFailure{Kind: UpstreamError, StatusCode: 500, Body: []byte("boom")}

	_, err := f.analyzer.Analyze(context.Background(), "doc1", "Backend Engineer")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if f.analyses.Len() != 0 {
		t.Fatalf("expected no analysis rows")
	}
	if f.logs.FilterMessage("reasoning call failed").Len() != 1 {
		t.Fatalf("expected failure to be logged")
	}
}

func TestAnalyzeMalformedPayload(t *testing.T) {
	f := newAnalyzerFixture(t)
	_ = f.extractions.Upsert(context.Background(), "doc1", []string{"python"})
	f.client.body = envelope(t, "not json at all")

	_, err := f.analyzer.Analyze(context.Background(), "doc1", "Backend Engineer")
	if !errors.Is(err, ErrUpstreamMalformed) {
		t.Fatalf("expected ErrUpstreamMalformed, got %v", err)
	}
	if f.analyses.Len() != 0 {
		t.Fatalf("expected no analysis rows")
	}
}

func TestAnalyzeFencedPayload(t *testing.T) {
	f := newAnalyzerFixture(t)
	ctx := context.Background()
	_ = f.extractions.Upsert(ctx, "doc1", []string{"python", "docker"})
	f.client.body = envelope(t, "```json\n{\"matching_percentage\":82,\"position_suitability\":\"Good\",\"gemini_analysis\":\"Fits.\"}\n```")

	got, err := f.analyzer.Analyze(ctx, "doc1", " Backend Engineer ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.MatchingPercentage != 82 {
		t.Fatalf("expected 82, got %v", got.MatchingPercentage)
	}
	if got.Recommendation != models.RecommendationModerate {
		t.Fatalf("expected default recommendation, got %s", got.Recommendation)
	}
	if got.Position != "Backend Engineer" || got.DocumentID != "doc1" {
		t.Fatalf("unexpected identity %q %q", got.DocumentID, got.Position)
	}
	if string(got.RawResponse) != string(f.client.body) {
		t.Fatalf("expected raw response retained")
	}

	var result map[string]any
	if err := json.Unmarshal(got.Result, &result); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if result["analysis_text"] != "Fits." || result["recommendation"] != "Moderate" {
		t.Fatalf("unexpected canonical result %v", result)
	}

	if f.client.calls() != 1 {
		t.Fatalf("expected one call, got %d", f.client.calls())
	}
}

func TestAnalyzeAppendsHistory(t *testing.T) {
	f := newAnalyzerFixture(t)
	ctx := context.Background()
	_ = f.extractions.Upsert(ctx, "doc1", []string{"python"})
	f.client.body = envelope(t, canonicalPayload)

	for i := 0; i < 3; i++ {
		if _, err := f.analyzer.Analyze(ctx, "doc1", "Backend Engineer"); err != nil {
			t.Fatalf("analysis %d: %v", i, err)
		}
	}

	history, _ := f.analyses.FindByDocumentID(ctx, "doc1", 10)
	if len(history) != 3 {
		t.Fatalf("expected three rows, got %d", len(history))
	}
}

func TestAnalyzeInvalidInput(t *testing.T) {
	f := newAnalyzerFixture(t)

	for _, tc := range [][2]string{{"", "Backend"}, {"doc1", "  "}} {
		if _, err := f.analyzer.Analyze(context.Background(), tc[0], tc[1]); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", tc, err)
		}
	}
}

func TestAnalyzeRejectsConcurrentSameDocument(t *testing.T) {
	f := newAnalyzerFixture(t)
	ctx := context.Background()
	_ = f.extractions.Upsert(ctx, "doc1", []string{"python"})
	f.client.body = envelope(t, canonicalPayload)
	f.client.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.analyzer.Analyze(ctx, "doc1", "Backend")
		done <- err
	}()

	for f.client.calls() == 0 {
		time.Sleep(time.Millisecond)
	}

	if _, err := f.analyzer.Analyze(ctx, "doc1", "Backend"); !errors.Is(err, ErrAnalysisInProgress) {
		t.Fatalf("expected ErrAnalysisInProgress, got %v", err)
	}

	close(f.client.block)
	if err := <-done; err != nil {
		t.Fatalf("first analysis failed: %v", err)
	}
	if f.analyses.Len() != 1 {
		t.Fatalf("expected one row, got %d", f.analyses.Len())
	}
}
