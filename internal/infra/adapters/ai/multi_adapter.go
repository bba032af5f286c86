// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"

	"research-paper-ai/internal/domain/ports/adapter"
)

var _ adapter.GenerationAdapter = (*MultiAdapter)(nil)

// MultiAdapter routes generation calls to one of several provider adapters.
// The default model decides the provider unless the config maps it explicitly.
type MultiAdapter struct {
	defaultProvider string // e.g., "anthropic", "openai" or "gemini"
	defaultModel    string
	byProvider      map[string]adapter.GenerationAdapter
	modelToProvider map[string]string
}

// NewMultiAdapter injects provider adapters; each one owns its default model.
func NewMultiAdapter(
	defaultProvider string,
	defaultModel string,
	byProvider map[string]adapter.GenerationAdapter,
	modelToProvider map[string]string,
) *MultiAdapter {
	return &MultiAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		defaultModel:    defaultModel,
		byProvider:      byProvider,
		modelToProvider: modelToProvider,
	}
}

func (m *MultiAdapter) resolveProvider(model string) string {
	if p := m.modelToProvider[model]; p != "" {
		return strings.ToLower(p)
	}
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "claude"):
		return "anthropic"
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"):
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiAdapter) pick() adapter.GenerationAdapter {
	prov := m.resolveProvider(m.defaultModel)
	if a := m.byProvider[prov]; a != nil {
		return a
	}
	// last resort: first available
	for _, a := range m.byProvider {
		if a != nil {
			return a
		}
	}
	return nil
}

func (m *MultiAdapter) ListModels(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(m.modelToProvider)+4)

	for model := range m.modelToProvider {
		if _, ok := seen[model]; !ok {
			seen[model] = struct{}{}
			out = append(out, model)
		}
	}
	for _, a := range m.byProvider {
		list, _ := a.ListModels(ctx)
		for _, name := range list {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	return out, nil
}

func (m *MultiAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	a := m.pick()
	if a == nil {
		return adapter.ModelInfo{Name: model}, nil
	}
	return a.GetModelInfo(model)
}

func (m *MultiAdapter) DefaultModel() string {
	if m.defaultModel != "" {
		return m.defaultModel
	}
	if a := m.pick(); a != nil {
		return a.DefaultModel()
	}
	return ""
}

func (m *MultiAdapter) CountTokens(ctx context.Context, text string) (int, error) {
	a := m.pick()
	if a == nil {
		return 0, nil
	}
	return a.CountTokens(ctx, text)
}

func (m *MultiAdapter) Generate(ctx context.Context, role, context_, task string) (string, error) {
	a := m.pick()
	if a == nil {
		return "", errors.New("no generation provider configured")
	}
	return a.Generate(ctx, role, context_, task)
}
