// File: internal/usecase/review_loop.go
package usecase

import (
	"context"
	"fmt"

	"research-paper-ai/internal/domain/model"
	"research-paper-ai/internal/infra/logging"
)

// loopResult carries the review loop's outcome back to the engine: the
// accepted draft, the scores it was accepted with, how many revision rounds
// it took, and whether the gate actually passed or the iteration cap hit.
type loopResult struct {
	draft     string
	scores    *model.DimensionScores
	rounds    int
	converged bool
}

func (e *Engine) policy() ScorePolicy {
	return ScorePolicy{
		Dimensions: e.cfg.Dimensions,
		ScaleMax:   e.cfg.ScaleMax,
		Floor:      e.cfg.FloorScore,
	}
}

// runReviewLoop gates the draft through peer review. The shape is review
// first, then up to MaxIterations revision+review rounds; every generation
// call lands in the audit log through runStage. The worst case is
// MaxIterations revisions and MaxIterations+1 reviews.
func (e *Engine) runReviewLoop(ctx context.Context, paper *model.Paper, draft string) (*loopResult, error) {
	log := logging.With(logging.WithPaperID(ctx, paper.ID), e.log)
	policy := e.policy()

	review, err := e.runStage(ctx, paper, stageCall{
		role: "peer_reviewer", step: "Initial Peer Review", iteration: 1,
		workPct: 88, donePct: 90,
		context: draft,
		task:    reviewTask(policy),
	})
	if err != nil {
		return nil, err
	}
	scores := ExtractScores(review, policy)

	rounds := 0
	for !policy.Passes(scores, e.cfg.PassThreshold) {
		if rounds >= e.cfg.MaxIterations {
			log.Warn().
				Int("rounds", rounds).
				Float64("score", scores.Total).
				Msg("revision budget exhausted, accepting current draft")
			return &loopResult{draft: draft, scores: scores, rounds: rounds, converged: false}, nil
		}
		rounds++

		// progress creeps from 90 toward 95 as rounds burn down
		pct := 90 + float64(rounds)/float64(e.cfg.MaxIterations)*5

		draft, err = e.runStage(ctx, paper, stageCall{
			role: "paper_revisor", step: fmt.Sprintf("Revision Round %d", rounds), iteration: rounds,
			workPct: pct, donePct: pct,
			context: fmt.Sprintf("## Review\n%s\n\n## Paper\n%s", review, draft),
			task:    "Revise the paper above to address every point raised in the review. Return the full revised paper in Markdown.",
		})
		if err != nil {
			return nil, err
		}

		review, err = e.runStage(ctx, paper, stageCall{
			role: "peer_reviewer", step: fmt.Sprintf("Peer Review Round %d", rounds), iteration: rounds + 1,
			workPct: pct, donePct: pct,
			context: draft,
			task:    reviewTask(policy),
		})
		if err != nil {
			return nil, err
		}
		scores = ExtractScores(review, policy)
		log.Debug().Int("round", rounds).Float64("score", scores.Total).Msg("re-review scored")
	}

	return &loopResult{draft: draft, scores: scores, rounds: rounds, converged: true}, nil
}

func reviewTask(policy ScorePolicy) string {
	return fmt.Sprintf(
		"Review the paper above as a strict peer reviewer. Score each of %v on a 0-%.0f scale and include a JSON block of the form {\"scores\": {...}} with those dimensions plus \"total\". Then list the concrete problems to fix.",
		policy.Dimensions, policy.ScaleMax)
}
