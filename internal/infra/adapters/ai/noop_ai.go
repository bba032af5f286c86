package ai

import (
	"context"
	"fmt"
	"time"

	"research-paper-ai/internal/domain/ports/adapter"
)

var _ adapter.GenerationAdapter = (*NoopAdapter)(nil)

// NoopAdapter implements adapter.GenerationAdapter for local/dev testing.
// It returns canned content instead of calling a real provider. Reviewer
// calls score a perfect round so the loop converges immediately.
type NoopAdapter struct{}

func NewNoopAdapter() *NoopAdapter {
	return &NoopAdapter{}
}

func (a *NoopAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop-model"}, nil
}

func (a *NoopAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{
		Name:        "noop-model",
		Description: "Noop generation model for testing",
		MaxTokens:   1024,
		Supports:    []string{"text"},
	}, nil
}

func (a *NoopAdapter) DefaultModel() string { return "noop-model" }

func (a *NoopAdapter) CountTokens(ctx context.Context, text string) (int, error) {
	return len(text) / 4, nil
}

func (a *NoopAdapter) Generate(ctx context.Context, role, context_, task string) (string, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if role == "peer_reviewer" {
		return `{"scores": {"novelty": 10, "quality": 10, "clarity": 10, "total": 10}}` + "\n\nExcellent work.\n\n-- Generated by noop-model --", nil
	}
	return fmt.Sprintf("# %s\n\nCanned output for role %s.\n\n-- Generated by noop-model --", role, role), nil
}
