package repository

import (
	"context"

	"research-paper-ai/internal/domain/model"
)

// StageLogRepository is the append-only audit sink for stage invocations.
// The engine only appends; reads serve the trace API.
type StageLogRepository interface {
	Append(ctx context.Context, rec *model.StageRecord) error
	ListByPaper(ctx context.Context, paperID string) ([]*model.StageRecord, error)
}
