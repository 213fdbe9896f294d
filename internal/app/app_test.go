package app

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"alfredoptarigan/skill-analyzer/internal/config"
	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/repositories"
)

type closingIndex struct {
	closed int
	err    error
}

func (i *closingIndex) EnsureCollection(context.Context) error { return nil }
func (i *closingIndex) Index(context.Context, string, []string) error { return nil }
func (i *closingIndex) Search(context.Context, []string, int) ([]models.CandidateMatch, error) {
	return nil, nil
}
func (i *closingIndex) Close() error {
	i.closed++
	return i.err
}

func memoryConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Backend: config.BackendMemory},
		Gemini:   config.GeminiConfig{Model: "gemini-test"},
	}
}

func TestBuildMemoryBackend(t *testing.T) {
	c, err := Build(context.Background(), memoryConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if _, ok := c.Extractions.(*repositories.MemoryExtractionRepository); !ok {
		t.Fatalf("expected memory extraction store, got %T", c.Extractions)
	}
	if c.Index != nil {
		t.Fatalf("expected index to be disabled without QDRANT_URL")
	}

	if _, err := c.Extraction.ExtractText(context.Background(), "doc", "python"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.Analyzer(); !errors.Is(err, config.ErrMissingGeminiKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestBuildUnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database.Backend = "sqlite"

	if _, err := Build(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBuildWithGeminiKey(t *testing.T) {
	cfg := memoryConfig()
	cfg.Gemini.APIKey = "key"

	c, err := Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if _, err := c.Analyzer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCloseReleasesIndex(t *testing.T) {
	for name, closeErr := range map[string]error{"clean": nil, "failing": errors.New("conn reset")} {
		t.Run(name, func(t *testing.T) {
			index := &closingIndex{err: closeErr}
			c := &Components{log: zap.NewNop(), Index: index}
			c.closers = append(c.closers, c.closeIndex(index))

			c.Close()
			c.Close()

			if index.closed != 1 {
				t.Fatalf("expected index closed once, got %d", index.closed)
			}
		})
	}
}
