package main

import (
	"strings"
	"testing"

	"github.com/stellarlinkco/mcq-eval/internal/adapter"
	"github.com/stellarlinkco/mcq-eval/internal/config"
	"github.com/stellarlinkco/mcq-eval/internal/runner"
)

func TestResolveOutputType(t *testing.T) {
	t.Parallel()

	info := adapter.NewGeneralMCQ().Info()

	got, err := resolveOutputType(info, "", "")
	if err != nil || got != adapter.OutputGeneration {
		t.Fatalf("default: got %q err=%v", got, err)
	}

	got, err = resolveOutputType(info, "multiple_choice", "")
	if err != nil || got != adapter.OutputMultipleChoice {
		t.Fatalf("flag: got %q err=%v", got, err)
	}

	got, err = resolveOutputType(info, "", "generation")
	if err != nil || got != adapter.OutputGeneration {
		t.Fatalf("config: got %q err=%v", got, err)
	}

	if _, err := resolveOutputType(info, "freeform", ""); err == nil {
		t.Fatalf("expected error for unsupported output type")
	}
}

func TestCountCorrect(t *testing.T) {
	t.Parallel()

	results := []runner.QuestionResult{
		{Score: 1.0},
		{Score: 0.0},
		{Score: 1.0},
	}
	if got := countCorrect(results); got != 2 {
		t.Fatalf("countCorrect: got %d want %d", got, 2)
	}
}

func TestResolveProvider(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "openai",
			Providers: map[string]config.ProviderConfig{
				"openai": {APIKey: "sk", Model: "gpt-4o-mini"},
			},
		},
	}

	p, model, err := resolveProvider(cfg, "", "")
	if err != nil {
		t.Fatalf("resolveProvider: %v", err)
	}
	if p.Name() != "openai" || model != "gpt-4o-mini" {
		t.Fatalf("got provider=%q model=%q", p.Name(), model)
	}

	p, model, err = resolveProvider(cfg, "", "gpt-4.1")
	if err != nil {
		t.Fatalf("resolveProvider with model: %v", err)
	}
	if p.Name() != "openai" || model != "gpt-4.1" {
		t.Fatalf("override: got provider=%q model=%q", p.Name(), model)
	}

	_, _, err = resolveProvider(cfg, "claude", "")
	if err == nil {
		t.Fatalf("expected error for unconfigured provider")
	}
	if !strings.Contains(err.Error(), "claude") {
		t.Fatalf("err: %v", err)
	}
}

func TestOpenLeaderboardStore_Memory(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Storage: config.StorageConfig{Type: "memory"}}
	lb, err := openLeaderboardStore(cfg)
	if err != nil {
		t.Fatalf("openLeaderboardStore: %v", err)
	}
	defer lb.Close()
}

func TestOpenLeaderboardStore_Unsupported(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Storage: config.StorageConfig{Type: "postgres"}}
	if _, err := openLeaderboardStore(cfg); err == nil {
		t.Fatalf("expected error")
	}
}
