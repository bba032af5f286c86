// File: internal/usecase/topic_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"research-paper-ai/internal/domain"
	"research-paper-ai/internal/domain/model"
	"research-paper-ai/internal/domain/ports/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type TopicUseCase struct {
	topics repository.TopicRepository
	log    *zerolog.Logger
}

func NewTopicUseCase(topics repository.TopicRepository, log *zerolog.Logger) *TopicUseCase {
	return &TopicUseCase{topics: topics, log: log}
}

func (uc *TopicUseCase) Create(ctx context.Context, title, description, field string, keywords []string) (*model.Topic, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: topic title required", domain.ErrInvalidArgument)
	}
	topic := &model.Topic{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Field:       field,
		Keywords:    keywords,
	}
	if err := uc.topics.Save(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (uc *TopicUseCase) Get(ctx context.Context, id string) (*model.Topic, error) {
	return uc.topics.FindByID(ctx, id)
}

func (uc *TopicUseCase) List(ctx context.Context) ([]*model.Topic, error) {
	return uc.topics.ListAll(ctx)
}

func (uc *TopicUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.topics.FindByID(ctx, id); err != nil {
		return err
	}
	return uc.topics.Delete(ctx, id)
}
