package adapter

import "context"

// ModelInfo describes a model.
type ModelInfo struct {
	Name        string
	Description string
	MaxTokens   int
	Supports    []string
}

// GenerationAdapter is the port for the text generation provider.
// Generate either returns the full generated text or an error; there is no
// partial-text outcome.
type GenerationAdapter interface {
	ListModels(ctx context.Context) ([]string, error)
	GetModelInfo(model string) (ModelInfo, error)

	// DefaultModel names the model used when a signature fallback is needed.
	DefaultModel() string

	// CountTokens estimates prompt tokens for the composed input
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, text string) (int, error)

	// Generate runs one agent invocation: role selects the system prompt,
	// context carries prior-stage output, task describes the work.
	Generate(ctx context.Context, role, context, task string) (string, error)
}
