package repository

import (
	"context"

	"research-paper-ai/internal/domain/model"
)

// PaperRepository stores paper job state. Updates made here must be visible
// to any subsequent Find by the same or another component.
type PaperRepository interface {
	Save(ctx context.Context, paper *model.Paper) error
	FindByID(ctx context.Context, id string) (*model.Paper, error)
	ListAll(ctx context.Context) ([]*model.Paper, error)
	Delete(ctx context.Context, id string) error
}
