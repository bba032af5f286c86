package model

import "time"

// Topic is a research topic papers are generated from.
type Topic struct {
	ID          string
	Title       string
	Description string
	Field       string
	Keywords    []string
	CreatedAt   time.Time
}
