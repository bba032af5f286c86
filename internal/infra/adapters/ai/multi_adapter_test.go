// File: internal/infra/adapters/ai/multi_adapter_test.go
package ai

import (
	"context"
	"testing"

	"research-paper-ai/internal/domain/ports/adapter"
)

type stubAdapter struct {
	name  string
	calls int
}

func (s *stubAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{s.name + "-model"}, nil
}

func (s *stubAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model}, nil
}

func (s *stubAdapter) DefaultModel() string { return s.name + "-model" }

func (s *stubAdapter) CountTokens(ctx context.Context, text string) (int, error) {
	return len(text), nil
}

func (s *stubAdapter) Generate(ctx context.Context, role, context_, task string) (string, error) {
	s.calls++
	return s.name, nil
}

func TestMultiAdapterRoutesByModelPrefix(t *testing.T) {
	cases := []struct {
		model string
		want  string
	}{
		{"claude-sonnet-4-20250514", "anthropic"},
		{"gemini-2.0-flash", "gemini"},
		{"gpt-4o", "openai"},
		{"mystery-model", "anthropic"}, // default provider
	}
	for _, c := range cases {
		an := &stubAdapter{name: "anthropic"}
		ge := &stubAdapter{name: "gemini"}
		op := &stubAdapter{name: "openai"}
		m := NewMultiAdapter("anthropic", c.model, map[string]adapter.GenerationAdapter{
			"anthropic": an, "gemini": ge, "openai": op,
		}, nil)

		got, err := m.Generate(context.Background(), "paper_writer", "", "task")
		if err != nil {
			t.Fatalf("Generate(%s): %v", c.model, err)
		}
		if got != c.want {
			t.Errorf("model %s routed to %s, want %s", c.model, got, c.want)
		}
	}
}

func TestMultiAdapterExplicitMapping(t *testing.T) {
	an := &stubAdapter{name: "anthropic"}
	ge := &stubAdapter{name: "gemini"}
	m := NewMultiAdapter("anthropic", "claude-custom", map[string]adapter.GenerationAdapter{
		"anthropic": an, "gemini": ge,
	}, map[string]string{"claude-custom": "gemini"})

	got, err := m.Generate(context.Background(), "paper_writer", "", "task")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "gemini" {
		t.Errorf("explicit mapping ignored, routed to %s", got)
	}
}

func TestMultiAdapterNoProviders(t *testing.T) {
	m := NewMultiAdapter("anthropic", "claude", map[string]adapter.GenerationAdapter{}, nil)
	if _, err := m.Generate(context.Background(), "paper_writer", "", "task"); err == nil {
		t.Fatal("expected error with no providers")
	}
}

func TestMultiAdapterDefaultModel(t *testing.T) {
	an := &stubAdapter{name: "anthropic"}
	m := NewMultiAdapter("anthropic", "claude-sonnet-4-20250514", map[string]adapter.GenerationAdapter{"anthropic": an}, nil)
	if got := m.DefaultModel(); got != "claude-sonnet-4-20250514" {
		t.Errorf("DefaultModel = %s", got)
	}
}

func TestLimitedGenerationPassThrough(t *testing.T) {
	an := &stubAdapter{name: "anthropic"}
	limited := NewLimitedGeneration(an, 2)

	got, err := limited.Generate(context.Background(), "paper_writer", "", "task")
	if err != nil || got != "anthropic" {
		t.Fatalf("Generate = %q, %v", got, err)
	}
	if an.calls != 1 {
		t.Errorf("inner calls = %d", an.calls)
	}

	// zero limit disables wrapping entirely
	if NewLimitedGeneration(an, 0) != adapter.GenerationAdapter(an) {
		t.Error("limit 0 should return the inner adapter")
	}
}
