package types

import "errors"

// Domain errors
var (
	// Chunking errors
	ErrRootNotFound    = errors.New("root directory not found")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrEmptyDefinition = errors.New("definition text cannot be empty")

	// Search result errors
	ErrInvalidChunkID        = errors.New("invalid chunk ID")
	ErrInvalidRank           = errors.New("rank must be >= 1")
	ErrInvalidRelevanceScore = errors.New("relevance score must be between 0 and 1")
	ErrMissingLocation       = errors.New("location is required")
	ErrEmptyContent          = errors.New("content cannot be empty")
)
