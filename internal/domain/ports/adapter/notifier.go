package adapter

import "context"

// CompletionNotifier is told when a paper reaches a terminal state.
// Delivery failures never affect the pipeline.
type CompletionNotifier interface {
	NotifyCompleted(ctx context.Context, paperID, title string, score float64) error
	NotifyFailed(ctx context.Context, paperID, title string, cause error) error
}
