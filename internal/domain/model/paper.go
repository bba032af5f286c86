package model

import "time"

type PaperStatus string

const (
	PaperStatusProcessing PaperStatus = "processing"
	PaperStatusReviewing  PaperStatus = "reviewing"
	PaperStatusCompleted  PaperStatus = "completed"
	PaperStatusError      PaperStatus = "error"
)

// DimensionScores holds the per-dimension review scores plus the total.
// Dimension names come from configuration (novelty, quality, clarity by default).
type DimensionScores struct {
	Dimensions map[string]float64 `json:"dimensions"`
	Total      float64            `json:"total"`
}

// Paper is the job record the pipeline engine drives to a terminal state.
// Only the engine mutates it after submission.
type Paper struct {
	ID        string
	TopicIDs  []string
	Title     string
	Status    PaperStatus
	Abstract  string
	Content   string
	Version   int
	Score     *DimensionScores
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether no further status transition is allowed.
func (p *Paper) Terminal() bool {
	return p.Status == PaperStatusCompleted || p.Status == PaperStatusError
}

// CanTransition enforces the monotonic status machine:
// processing -> reviewing -> completed, with error reachable from any
// non-terminal state.
func (p *Paper) CanTransition(next PaperStatus) bool {
	if p.Terminal() {
		return false
	}
	switch next {
	case PaperStatusError:
		return true
	case PaperStatusReviewing:
		return p.Status == PaperStatusProcessing
	case PaperStatusCompleted:
		return p.Status == PaperStatusReviewing || p.Status == PaperStatusProcessing
	case PaperStatusProcessing:
		return p.Status == PaperStatusProcessing
	}
	return false
}
