package repository

import (
	"context"

	"research-paper-ai/internal/domain/model"
)

type TopicRepository interface {
	Save(ctx context.Context, topic *model.Topic) error
	FindByID(ctx context.Context, id string) (*model.Topic, error)
	ListAll(ctx context.Context) ([]*model.Topic, error)
	Delete(ctx context.Context, id string) error
}
