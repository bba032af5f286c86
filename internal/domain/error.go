package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrPaperNotFound    = errors.New("paper not found")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrGenerationFailed = errors.New("generation provider call failed")
	ErrPaperFinalized   = errors.New("paper is already in a terminal state")
	ErrReadDatabaseRow  = errors.New("failed to read database row")
)
