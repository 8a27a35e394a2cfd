package leaderboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveAndGetLeaderboard(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	entries := []*Entry{
		{Model: "m1", Provider: "claude", Dataset: "general_mcq", Subset: "default", Accuracy: 0.8, Questions: 10, Correct: 8},
		{Model: "m2", Provider: "openai", Dataset: "general_mcq", Subset: "default", Accuracy: 0.9, Questions: 10, Correct: 9, FewShot: 3},
		{Model: "m3", Provider: "claude", Dataset: "other", Subset: "default", Accuracy: 1.0, Questions: 5, Correct: 5},
	}
	for _, e := range entries {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if e.ID == 0 {
			t.Fatalf("Save: entry id not set")
		}
	}

	got, err := s.GetLeaderboard(ctx, "general_mcq", 10)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len: got %d want %d", len(got), 2)
	}
	if got[0].Model != "m2" || got[1].Model != "m1" {
		t.Fatalf("order: got %q, %q", got[0].Model, got[1].Model)
	}
	if got[0].FewShot != 3 || got[0].Correct != 9 {
		t.Fatalf("fields: %+v", got[0])
	}
}

func TestStore_GetModelHistory(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	older := &Entry{Model: "m1", Provider: "claude", Dataset: "general_mcq", Accuracy: 0.5, EvalDate: time.Now().Add(-time.Hour).UTC()}
	newer := &Entry{Model: "m1", Provider: "claude", Dataset: "general_mcq", Accuracy: 0.7, EvalDate: time.Now().UTC()}
	for _, e := range []*Entry{older, newer} {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := s.GetModelHistory(ctx, "m1", "general_mcq")
	if err != nil {
		t.Fatalf("GetModelHistory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len: got %d want %d", len(got), 2)
	}
	if got[0].Accuracy != 0.7 {
		t.Fatalf("newest first: got %+v", got[0])
	}
}

func TestStore_SaveValidation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, nil); err == nil {
		t.Fatalf("expected error for nil entry")
	}
	if err := s.Save(ctx, &Entry{Model: "m"}); err == nil {
		t.Fatalf("expected error for missing provider/dataset")
	}
	if err := s.Save(nil, &Entry{Model: "m", Provider: "p", Dataset: "d"}); err == nil {
		t.Fatalf("expected error for nil context")
	}

	e := &Entry{Model: "m", Provider: "p", Dataset: "d"}
	if err := s.Save(ctx, e); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if e.Subset != "default" {
		t.Fatalf("Subset default: got %q", e.Subset)
	}
	if e.EvalDate.IsZero() {
		t.Fatalf("EvalDate not defaulted")
	}
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "results.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	if err := s.Save(context.Background(), &Entry{Model: "m", Provider: "p", Dataset: "d"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestNewStore_EmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := NewStore(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
