// File: internal/usecase/engine_test.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"research-paper-ai/internal/config"
	"research-paper-ai/internal/domain/model"

	"github.com/rs/zerolog"
)

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Dimensions:    []string{"novelty", "quality", "clarity"},
		PassThreshold: 9.0,
		ScaleMax:      10,
		FloorScore:    1.0,
		MaxIterations: 2,
		Workers:       1,
	}
}

type engineFixture struct {
	papers   *memPaperRepo
	topics   *memTopicRepo
	stageLog *memStageLog
	ai       *scriptedAI
	pub      *recordingPublisher
	notifier *fakeNotifier
	engine   *Engine
}

func newEngineFixture(t *testing.T, ai *scriptedAI, cfg config.PipelineConfig) *engineFixture {
	t.Helper()
	log := zerolog.Nop()
	f := &engineFixture{
		papers:   newMemPaperRepo(),
		topics:   newMemTopicRepo(),
		stageLog: newMemStageLog(),
		ai:       ai,
		pub:      &recordingPublisher{},
		notifier: &fakeNotifier{},
	}
	f.engine = NewEngine(f.papers, f.topics, f.stageLog, ai, f.pub, f.notifier, cfg, &log)

	if err := f.topics.Save(context.Background(), &model.Topic{
		ID: "t1", Title: "Graph Sparsification", Field: "CS",
		Keywords: []string{"graphs", "spectral"},
	}); err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	if err := f.papers.Save(context.Background(), &model.Paper{
		ID: "p1", TopicIDs: []string{"t1"}, Title: "Research on Graph Sparsification",
		Status: model.PaperStatusProcessing,
	}); err != nil {
		t.Fatalf("seed paper: %v", err)
	}
	return f
}

const passingReview = `{"scores": {"novelty": 9.5, "quality": 9.2, "clarity": 9.8, "total": 9.5}}

Strong work, publishable as is.`

const failingReview = `{"scores": {"novelty": 6.0, "quality": 7.0, "clarity": 8.0, "total": 7.0}}

The methodology section needs major rework.`

func TestEngineRunConvergesFirstReview(t *testing.T) {
	ai := newScriptedAI().
		on("paper_writer", "# Sparsification Revisited\n\n## Abstract\nWe study spectral graph sparsification at scale.\n\n## Introduction\nBody.\n\n-- Generated by scripted-model --").
		on("peer_reviewer", passingReview)
	f := newEngineFixture(t, ai, testPipelineConfig())

	paper, err := f.engine.Run(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if paper.Status != model.PaperStatusCompleted {
		t.Fatalf("status = %s, want completed", paper.Status)
	}
	if strings.Contains(paper.Content, "Generated by") {
		t.Errorf("signature leaked into content: %q", paper.Content)
	}
	if paper.Abstract != "We study spectral graph sparsification at scale." {
		t.Errorf("abstract = %q", paper.Abstract)
	}
	if paper.Version != 1 {
		t.Errorf("version = %d, want 1", paper.Version)
	}
	if paper.Score == nil || paper.Score.Total != 9.5 {
		t.Errorf("score = %+v", paper.Score)
	}

	// audit: five stages plus the initial review, in order
	recs, _ := f.stageLog.ListByPaper(context.Background(), "p1")
	wantSteps := []string{
		"Research Plan", "Literature Review", "Methodology Design",
		"Data Analysis Plan", "First Draft", "Initial Peer Review",
	}
	if len(recs) != len(wantSteps) {
		t.Fatalf("stage records = %d, want %d", len(recs), len(wantSteps))
	}
	for i, step := range wantSteps {
		if recs[i].StepName != step {
			t.Errorf("record %d = %s, want %s", i, recs[i].StepName, step)
		}
	}

	events := f.pub.all()
	if len(events) == 0 {
		t.Fatal("no progress events published")
	}
	last := events[len(events)-1]
	if last.Progress != 100 || last.Status != "completed" || last.Scores == nil {
		t.Errorf("final event = %+v", last)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Progress < events[i-1].Progress {
			t.Errorf("progress went backwards: %v then %v", events[i-1].Progress, events[i].Progress)
		}
	}

	if len(f.notifier.completed) != 1 {
		t.Errorf("completed notifications = %d", len(f.notifier.completed))
	}
}

func TestEngineRunRevisionRound(t *testing.T) {
	ai := newScriptedAI().
		on("paper_writer", "# Draft\n\nFirst version body that is long enough to serve as an abstract paragraph.").
		on("paper_revisor", "# Draft v2\n\nRevised version body addressing every review point in detail.").
		on("peer_reviewer", failingReview, passingReview)
	f := newEngineFixture(t, ai, testPipelineConfig())

	paper, err := f.engine.Run(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if paper.Status != model.PaperStatusCompleted {
		t.Fatalf("status = %s", paper.Status)
	}
	if paper.Version != 2 {
		t.Errorf("version = %d, want 2 after one revision", paper.Version)
	}
	if !strings.Contains(paper.Content, "Revised version") {
		t.Errorf("content is not the revised draft: %q", paper.Content)
	}

	recs, _ := f.stageLog.ListByPaper(context.Background(), "p1")
	// 5 stages + initial review + revision + re-review
	if len(recs) != 8 {
		t.Fatalf("stage records = %d, want 8", len(recs))
	}
	if recs[6].StepName != "Revision Round 1" || recs[6].AgentRole != "paper_revisor" {
		t.Errorf("record 6 = %s/%s", recs[6].AgentRole, recs[6].StepName)
	}
	if recs[7].StepName != "Peer Review Round 1" || recs[7].Iteration != 2 {
		t.Errorf("record 7 = %s iteration %d", recs[7].StepName, recs[7].Iteration)
	}
}

func TestEngineRunExhaustsIterationBudget(t *testing.T) {
	ai := newScriptedAI().
		on("paper_writer", "# Draft\n\nA body paragraph comfortably past the abstract length floor for papers.").
		on("paper_revisor", "# Draft\n\nStill not good enough, but revised once more for the reviewer.").
		on("peer_reviewer", failingReview)
	cfg := testPipelineConfig()
	cfg.MaxIterations = 2
	f := newEngineFixture(t, ai, cfg)

	paper, err := f.engine.Run(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// budget exhaustion still completes with the best effort draft
	if paper.Status != model.PaperStatusCompleted {
		t.Fatalf("status = %s", paper.Status)
	}
	if paper.Score.Total != 7.0 {
		t.Errorf("score total = %v, want the failing 7.0", paper.Score.Total)
	}

	recs, _ := f.stageLog.ListByPaper(context.Background(), "p1")
	// 5 stages + initial review + 2 * (revision + re-review)
	if len(recs) != 10 {
		t.Fatalf("stage records = %d, want 10", len(recs))
	}
}

func TestEngineRunStageFailure(t *testing.T) {
	ai := newScriptedAI()
	ai.failRole = "methodology_expert"
	ai.failErr = errors.New("provider 529")
	f := newEngineFixture(t, ai, testPipelineConfig())

	if _, err := f.engine.Run(context.Background(), "p1"); err == nil {
		t.Fatal("Run should fail")
	}

	paper, _ := f.papers.FindByID(context.Background(), "p1")
	if paper.Status != model.PaperStatusError {
		t.Fatalf("status = %s, want error", paper.Status)
	}

	// the two completed stages stay audited
	recs, _ := f.stageLog.ListByPaper(context.Background(), "p1")
	if len(recs) != 2 {
		t.Fatalf("stage records = %d, want 2", len(recs))
	}

	// no progress after the failure; the last event is the literature stage
	events := f.pub.all()
	last := events[len(events)-1]
	if last.Agent != "methodology_expert" || last.Status != "working" {
		t.Errorf("last event = %+v", last)
	}

	if len(f.notifier.failed) != 1 {
		t.Errorf("failed notifications = %d", len(f.notifier.failed))
	}
}

func TestEngineSynthesizesFallbackSignature(t *testing.T) {
	ai := newScriptedAI().
		on("paper_writer", "# Unsigned Draft\n\nThe provider forgot its signature on this one entirely.").
		on("peer_reviewer", passingReview)
	f := newEngineFixture(t, ai, testPipelineConfig())

	if _, err := f.engine.Run(context.Background(), "p1"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	recs, _ := f.stageLog.ListByPaper(context.Background(), "p1")
	for _, rec := range recs {
		if rec.ModelSignature == "" {
			t.Errorf("record %s has empty signature", rec.StepName)
		}
		if rec.StepName == "First Draft" &&
			rec.ModelSignature != "-- Generated by scripted-model (Fallback) --" {
			t.Errorf("draft signature = %q", rec.ModelSignature)
		}
	}
}

func TestEngineRunUnknownPaper(t *testing.T) {
	f := newEngineFixture(t, newScriptedAI(), testPipelineConfig())
	if _, err := f.engine.Run(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown paper")
	}
}
