package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"alfredoptarigan/skill-analyzer/internal/repositories"
)

func TestIngestDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string][]byte{
		filepath.Join(dir, "a.pdf"):      buildPDF("Python developer"),
		filepath.Join(nested, "b.PDF"):   buildPDF("Docker and AWS"),
		filepath.Join(dir, "broken.pdf"): []byte("not a pdf"),
		filepath.Join(dir, "notes.txt"):  []byte("ignored"),
	}
	for path, data := range files {
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	repo := repositories.NewMemoryExtractionRepository()
	svc := NewExtractionService(testExtractor(t), repo, nil)

	results, err := IngestDir(context.Background(), svc, dir, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	byName := make(map[string]IngestResult)
	for _, r := range results {
		byName[filepath.Base(r.Job.Path)] = r
	}

	if r := byName["a.pdf"]; r.Err != nil || r.Extraction.MatchedSkills[0] != "python" {
		t.Fatalf("unexpected result for a.pdf: %+v", r)
	}
	if r := byName["b.PDF"]; r.Err != nil || len(r.Extraction.MatchedSkills) != 2 {
		t.Fatalf("unexpected result for b.PDF: %+v", r)
	}
	if r := byName["broken.pdf"]; !errors.Is(r.Err, ErrInvalidDocument) {
		t.Fatalf("expected invalid document for broken.pdf, got %v", r.Err)
	}

	if _, err := repo.FindByDocumentID(context.Background(), "b.PDF"); err != nil {
		t.Fatalf("expected b.PDF to be stored: %v", err)
	}
}

func TestWorkerRejectsAfterStop(t *testing.T) {
	svc := NewExtractionService(testExtractor(t), repositories.NewMemoryExtractionRepository(), nil)
	w := NewWorker(svc, 1, nil)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	if w.EnqueueJob(IngestJob{Path: "x.pdf"}) {
		t.Fatal("expected enqueue to fail after stop")
	}
	if _, open := <-w.Results(); open {
		t.Fatal("expected results channel to be closed")
	}
}

func TestFindPDFsMissingDir(t *testing.T) {
	if _, err := FindPDFs(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
