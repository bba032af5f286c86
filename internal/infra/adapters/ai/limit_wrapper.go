package ai

import (
	"context"

	"research-paper-ai/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.GenerationAdapter = (*limitedGeneration)(nil)

// limitedGeneration caps concurrent provider calls across all running jobs.
type limitedGeneration struct {
	inner adapter.GenerationAdapter
	sem   chan struct{}
}

func NewLimitedGeneration(inner adapter.GenerationAdapter, maxConcurrent int) adapter.GenerationAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedGeneration{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedGeneration) ListModels(ctx context.Context) ([]string, error) {
	return l.inner.ListModels(ctx)
}

func (l *limitedGeneration) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return l.inner.GetModelInfo(model)
}

func (l *limitedGeneration) DefaultModel() string {
	return l.inner.DefaultModel()
}

func (l *limitedGeneration) CountTokens(ctx context.Context, text string) (int, error) {
	return l.inner.CountTokens(ctx, text)
}

func (l *limitedGeneration) Generate(ctx context.Context, role, context_, task string) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Generate(ctx, role, context_, task)
}
