// File: internal/usecase/engine.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"research-paper-ai/internal/config"
	"research-paper-ai/internal/domain"
	"research-paper-ai/internal/domain/model"
	"research-paper-ai/internal/domain/ports/adapter"
	"research-paper-ai/internal/domain/ports/repository"
	"research-paper-ai/internal/infra/logging"
	"research-paper-ai/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// ProgressPublisher is what the engine needs from the broadcast hub.
type ProgressPublisher interface {
	Publish(paperID string, ev model.ProgressEvent)
}

// Engine drives one paper job through the fixed stage sequence and the
// review/revision loop to a terminal state. All collaborators are injected
// at construction; the engine reads no shared process state.
type Engine struct {
	papers   repository.PaperRepository
	topics   repository.TopicRepository
	stageLog repository.StageLogRepository
	ai       adapter.GenerationAdapter
	pub      ProgressPublisher
	notifier adapter.CompletionNotifier
	cfg      config.PipelineConfig
	log      *zerolog.Logger
}

func NewEngine(
	papers repository.PaperRepository,
	topics repository.TopicRepository,
	stageLog repository.StageLogRepository,
	ai adapter.GenerationAdapter,
	pub ProgressPublisher,
	notifier adapter.CompletionNotifier,
	cfg config.PipelineConfig,
	log *zerolog.Logger,
) *Engine {
	return &Engine{
		papers:   papers,
		topics:   topics,
		stageLog: stageLog,
		ai:       ai,
		pub:      pub,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}
}

// Run executes the full pipeline for an already-created paper. It is meant
// to run as a detached background task: errors are terminal for the job
// (status `error`), never retried here, and also returned for the worker log.
func (e *Engine) Run(ctx context.Context, paperID string) (*model.Paper, error) {
	ctx = logging.WithPaperID(ctx, paperID)
	log := logging.With(ctx, e.log)
	defer logging.TraceDuration(log, "Engine.Run")()

	paper, err := e.papers.FindByID(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("paper not found: %w", err)
	}

	topics, err := e.fetchTopics(ctx, paper.TopicIDs)
	if err != nil {
		e.fail(ctx, paper, err)
		return nil, err
	}

	log.Info().Int("topics", len(topics)).Msg("pipeline started")

	// Fixed stage sequence; each output becomes the next stage's context.
	plan, err := e.runStage(ctx, paper, stageCall{
		role: "research_director", step: "Research Plan", iteration: 1,
		workPct: 10, donePct: 15,
		task: planTask(topics),
	})
	if err != nil {
		e.fail(ctx, paper, err)
		return nil, err
	}

	literature, err := e.runStage(ctx, paper, stageCall{
		role: "literature_researcher", step: "Literature Review", iteration: 1,
		workPct: 20, donePct: 35,
		context: plan,
		task:    "Based on the research plan above, survey the literature. Summarize the state of the art, the key findings and the research gaps.",
	})
	if err != nil {
		e.fail(ctx, paper, err)
		return nil, err
	}

	methodology, err := e.runStage(ctx, paper, stageCall{
		role: "methodology_expert", step: "Methodology Design", iteration: 1,
		workPct: 40, donePct: 50,
		context: literature,
		task:    "Based on the literature review above, design the research methodology: detailed methods, experiment design and data collection plan.",
	})
	if err != nil {
		e.fail(ctx, paper, err)
		return nil, err
	}

	analysis, err := e.runStage(ctx, paper, stageCall{
		role: "data_analyst", step: "Data Analysis Plan", iteration: 1,
		workPct: 55, donePct: 65,
		context: methodology,
		task:    "Based on the methodology above, propose the data analysis plan: statistical methods, visualizations and result validation.",
	})
	if err != nil {
		e.fail(ctx, paper, err)
		return nil, err
	}

	draft, err := e.runStage(ctx, paper, stageCall{
		role: "paper_writer", step: "First Draft", iteration: 1,
		workPct: 70, donePct: 85,
		context: fmt.Sprintf(
			"## Research Plan\n%s\n\n## Literature Review\n%s\n\n## Methodology\n%s\n\n## Data Analysis\n%s",
			plan, literature, methodology, analysis),
		task: "Using all the material above, write the complete academic paper in Markdown with title, abstract, introduction, methods, results, discussion, conclusion and references.",
	})
	if err != nil {
		e.fail(ctx, paper, err)
		return nil, err
	}

	// Draft complete; the loop owns status `reviewing` from here.
	paper.Status = model.PaperStatusReviewing
	if err := e.papers.Save(ctx, paper); err != nil {
		e.fail(ctx, paper, err)
		return nil, err
	}

	result, err := e.runReviewLoop(ctx, paper, draft)
	if err != nil {
		e.fail(ctx, paper, err)
		return nil, err
	}

	paper.Content = result.draft
	paper.Abstract = DeriveAbstract(result.draft)
	paper.Score = result.scores
	paper.Version = result.rounds + 1
	paper.Status = model.PaperStatusCompleted
	if err := e.papers.Save(ctx, paper); err != nil {
		e.fail(ctx, paper, err)
		return nil, err
	}

	// progress only after the content is durably saved
	e.pub.Publish(paper.ID, model.ProgressEvent{
		PaperID:  paper.ID,
		Agent:    "completed",
		Status:   "completed",
		Progress: 100,
		Message:  "paper generation finished",
		Scores:   result.scores,
	})

	metrics.IncPaper(string(model.PaperStatusCompleted))
	metrics.ObserveRevisionRounds(result.rounds)
	metrics.ObserveFinalScore(result.scores.Total)
	log.Info().
		Bool("converged", result.converged).
		Int("rounds", result.rounds).
		Float64("score", result.scores.Total).
		Msg("pipeline finished")

	if e.notifier != nil {
		if err := e.notifier.NotifyCompleted(ctx, paper.ID, paper.Title, result.scores.Total); err != nil {
			log.Warn().Err(err).Msg("completion notification failed")
		}
	}
	return paper, nil
}

type stageCall struct {
	role      string
	step      string
	iteration int
	context   string // prior-stage output fed to the provider
	task      string
	workPct   float64
	donePct   float64
}

func (c stageCall) input() string {
	if c.context == "" {
		return c.task
	}
	return c.context + "\n\n" + c.task
}

// runStage performs one generation call: working event, provider call,
// normalization, awaited audit write, completed event. The provider call is
// the only suspension point; its timeout is the stage's only timeout.
func (e *Engine) runStage(ctx context.Context, paper *model.Paper, call stageCall) (string, error) {
	e.pub.Publish(paper.ID, model.ProgressEvent{
		PaperID:  paper.ID,
		Agent:    call.role,
		Status:   "working",
		Progress: call.workPct,
		Message:  fmt.Sprintf("%s is working", call.role),
	})

	if tokens, err := e.ai.CountTokens(ctx, call.input()); err == nil {
		e.log.Debug().Str("paper_id", paper.ID).Str("role", call.role).Int("prompt_tokens", tokens).Msg("stage input sized")
	}

	start := time.Now()
	raw, err := e.ai.Generate(ctx, call.role, call.context, call.task)
	elapsed := time.Since(start)
	metrics.ObserveStage(call.role, err == nil, elapsed.Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: stage %s: %v", domain.ErrGenerationFailed, call.step, err)
	}

	signature, clean := NormalizeResponse(raw)
	if signature == "" {
		signature = fmt.Sprintf(signatureFallback, e.ai.DefaultModel())
	}

	// The audit write is awaited: the stage is not done until its record is
	// durable, so the history stays complete even if we crash mid-pipeline.
	rec := &model.StageRecord{
		PaperID:        paper.ID,
		AgentRole:      call.role,
		StepName:       call.step,
		Iteration:      call.iteration,
		InputContext:   call.input(),
		Output:         clean,
		ModelSignature: signature,
	}
	if err := e.stageLog.Append(ctx, rec); err != nil {
		return "", fmt.Errorf("audit write for %s: %w", call.step, err)
	}

	e.pub.Publish(paper.ID, model.ProgressEvent{
		PaperID:  paper.ID,
		Agent:    call.role,
		Status:   "completed",
		Progress: call.donePct,
		Message:  fmt.Sprintf("%s completed %s", call.role, call.step),
	})
	return clean, nil
}

// fail marks the job terminal with status `error`. Partial content and the
// audit history written so far stay persisted for postmortem inspection,
// and no further progress is emitted.
func (e *Engine) fail(ctx context.Context, paper *model.Paper, cause error) {
	log := logging.With(ctx, e.log)
	log.Error().Err(cause).Msg("pipeline failed")

	if paper.CanTransition(model.PaperStatusError) {
		paper.Status = model.PaperStatusError
		// background context: the job must reach its terminal state even if
		// the run context is gone
		if err := e.papers.Save(context.Background(), paper); err != nil {
			log.Error().Err(err).Msg("could not persist error status")
		}
	}
	metrics.IncPaper(string(model.PaperStatusError))
	if e.notifier != nil {
		_ = e.notifier.NotifyFailed(context.Background(), paper.ID, paper.Title, cause)
	}
}

func (e *Engine) fetchTopics(ctx context.Context, ids []string) ([]*model.Topic, error) {
	if len(ids) == 0 {
		return nil, domain.ErrTopicNotFound
	}
	out := make([]*model.Topic, 0, len(ids))
	for _, id := range ids {
		t, err := e.topics.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrTopicNotFound, id)
		}
		out = append(out, t)
	}
	return out, nil
}

func planTask(topics []*model.Topic) string {
	var b strings.Builder
	b.WriteString("Analyze the following research topics and produce a research plan:\n")
	for _, t := range topics {
		fmt.Fprintf(&b, "\nTitle: %s\nDescription: %s\nField: %s\nKeywords: %s\n",
			t.Title, t.Description, t.Field, strings.Join(t.Keywords, ", "))
	}
	return b.String()
}
