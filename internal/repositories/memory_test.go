package repositories

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"alfredoptarigan/skill-analyzer/internal/models"
)

func TestMemoryExtractionUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryExtractionRepository()

	if _, err := repo.FindByDocumentID(ctx, "cv.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Upsert(ctx, "cv.pdf", []string{"python", "aws"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, _ := repo.FindByDocumentID(ctx, "cv.pdf")

	if err := repo.Upsert(ctx, "cv.pdf", []string{"go"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.FindByDocumentID(ctx, "cv.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual([]string(got.MatchedSkills), []string{"go"}) {
		t.Fatalf("expected replaced skills, got %v", got.MatchedSkills)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed on upsert")
	}
}

func TestMemoryExtractionUpsertSequences(t *testing.T) {
	tests := []struct {
		name   string
		writes [][]string
		want   []string
	}{
		{name: "same set twice", writes: [][]string{{"python", "aws"}, {"python", "aws"}}, want: []string{"python", "aws"}},
		{name: "replace with other set", writes: [][]string{{"python", "aws"}, {"go"}}, want: []string{"go"}},
		{name: "replace with empty set", writes: [][]string{{"python"}, {}}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewMemoryExtractionRepository()

			for _, skills := range tt.writes {
				if err := repo.Upsert(ctx, "cv.pdf", skills); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			got, err := repo.FindByDocumentID(ctx, "cv.pdf")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual([]string(got.MatchedSkills), tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got.MatchedSkills)
			}
		})
	}
}

func TestMemoryExtractionEmptySkillSet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryExtractionRepository()

	if err := repo.Upsert(ctx, "blank.pdf", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.FindByDocumentID(ctx, "blank.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MatchedSkills == nil || len(got.MatchedSkills) != 0 {
		t.Fatalf("expected empty non-nil skills, got %#v", got.MatchedSkills)
	}
}

func TestMemoryExtractionIsolatesCallerSlice(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryExtractionRepository()

	skills := []string{"java"}
	_ = repo.Upsert(ctx, "a", skills)
	skills[0] = "mutated"

	got, _ := repo.FindByDocumentID(ctx, "a")
	if got.MatchedSkills[0] != "java" {
		t.Fatalf("stored skills aliased caller slice: %v", got.MatchedSkills)
	}
}

func TestMemoryAnalysisAppendOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAnalysisRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := []models.Analysis{
		{DocumentID: "cv", Position: "Backend", MatchingPercentage: 60, CreatedAt: base},
		{DocumentID: "cv", Position: "Backend", MatchingPercentage: 80, CreatedAt: base.Add(time.Minute)},
		{DocumentID: "other", Position: "Data", MatchingPercentage: 90, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range rows {
		if err := repo.Append(ctx, &rows[i]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if repo.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", repo.Len())
	}
	if rows[0].ID == rows[1].ID {
		t.Fatalf("expected distinct ids for repeated analyses")
	}

	history, _ := repo.FindByDocumentID(ctx, "cv", 0)
	if len(history) != 2 || history[0].MatchingPercentage != 80 {
		t.Fatalf("expected newest first history, got %+v", history)
	}

	top, _ := repo.FindTop(ctx, 75, 10)
	if len(top) != 2 || top[0].DocumentID != "other" || top[1].MatchingPercentage != 80 {
		t.Fatalf("unexpected top list %+v", top)
	}

	limited, _ := repo.FindTop(ctx, 0, 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}

	none, _ := repo.FindByDocumentID(ctx, "missing", 10)
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil history")
	}
}
