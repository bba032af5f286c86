package model

// ProgressEvent is broadcast to live subscribers while a paper is generated.
// Events are transient; nothing replays them for late subscribers.
type ProgressEvent struct {
	PaperID  string           `json:"paper_id"`
	Agent    string           `json:"agent"`
	Status   string           `json:"status"`
	Progress float64          `json:"progress"`
	Message  string           `json:"message"`
	Scores   *DimensionScores `json:"scores,omitempty"`
}
