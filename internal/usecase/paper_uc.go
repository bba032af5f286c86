// File: internal/usecase/paper_uc.go
package usecase

import (
	"context"
	"fmt"

	"research-paper-ai/internal/domain"
	"research-paper-ai/internal/domain/model"
	"research-paper-ai/internal/domain/ports/repository"
	"research-paper-ai/internal/infra/logging"
	"research-paper-ai/internal/infra/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaperUseCase is the HTTP-facing service for paper jobs. Submission creates
// the job record synchronously and detaches the pipeline run onto the worker
// pool; everything else is plain reads against the repositories.
type PaperUseCase struct {
	papers   repository.PaperRepository
	topics   repository.TopicRepository
	stageLog repository.StageLogRepository
	engine   *Engine
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewPaperUseCase(
	papers repository.PaperRepository,
	topics repository.TopicRepository,
	stageLog repository.StageLogRepository,
	engine *Engine,
	pool *worker.Pool,
	log *zerolog.Logger,
) *PaperUseCase {
	return &PaperUseCase{
		papers:   papers,
		topics:   topics,
		stageLog: stageLog,
		engine:   engine,
		pool:     pool,
		log:      log,
	}
}

// Submit validates the topics, creates (or resumes) the paper record and
// schedules the pipeline. It returns as soon as the record is durable; the
// caller watches progress over the feed or by polling Get.
//
// When paperID names an existing paper, the job is re-run into that record:
// status resets to processing, content and scores are cleared, and prior
// audit history is kept (iterations distinguish the runs).
func (uc *PaperUseCase) Submit(ctx context.Context, topicIDs []string, paperID string) (*model.Paper, error) {
	if len(topicIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one topic required", domain.ErrInvalidArgument)
	}

	var title string
	for i, id := range topicIDs {
		t, err := uc.topics.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrTopicNotFound, id)
		}
		if i == 0 {
			title = "Research on " + t.Title
		}
	}

	var paper *model.Paper
	if paperID != "" {
		existing, err := uc.papers.FindByID(ctx, paperID)
		if err != nil {
			return nil, err
		}
		existing.TopicIDs = topicIDs
		existing.Status = model.PaperStatusProcessing
		existing.Content = ""
		existing.Abstract = ""
		existing.Score = nil
		paper = existing
	} else {
		paper = &model.Paper{
			ID:       uuid.NewString(),
			TopicIDs: topicIDs,
			Title:    title,
			Status:   model.PaperStatusProcessing,
			Version:  0,
		}
	}

	if err := uc.papers.Save(ctx, paper); err != nil {
		return nil, fmt.Errorf("could not create paper job: %w", err)
	}

	id := paper.ID
	if err := uc.pool.Submit(func(runCtx context.Context) error {
		_, err := uc.engine.Run(runCtx, id)
		return err
	}); err != nil {
		// record stays in processing; the client can resubmit into the same id
		log := logging.With(logging.WithPaperID(ctx, id), uc.log)
		log.Error().Err(err).Msg("could not schedule pipeline run")
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	return paper, nil
}

func (uc *PaperUseCase) Get(ctx context.Context, id string) (*model.Paper, error) {
	return uc.papers.FindByID(ctx, id)
}

func (uc *PaperUseCase) List(ctx context.Context) ([]*model.Paper, error) {
	return uc.papers.ListAll(ctx)
}

// Trace returns the paper's full audit history in append order.
func (uc *PaperUseCase) Trace(ctx context.Context, id string) ([]*model.StageRecord, error) {
	if _, err := uc.papers.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return uc.stageLog.ListByPaper(ctx, id)
}

// Delete removes a paper record. A job still in flight keeps running and its
// next Save resurrects the row; admins are expected to delete settled jobs.
func (uc *PaperUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.papers.FindByID(ctx, id); err != nil {
		return err
	}
	return uc.papers.Delete(ctx, id)
}
