package model

import "time"

// StageRecord is one immutable audit entry per stage invocation.
// Records are append-only: the engine never updates or deletes them.
type StageRecord struct {
	ID             string
	PaperID        string
	AgentRole      string
	StepName       string
	Iteration      int
	InputContext   string
	Output         string
	ModelSignature string
	CreatedAt      time.Time
}
