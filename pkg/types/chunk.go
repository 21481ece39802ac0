package types

import (
	"crypto/sha256"
	"errors"
)

// ChunkKind represents the kind of Julia definition a chunk was cut from
type ChunkKind string

const (
	KindFunction     ChunkKind = "function"
	KindStruct       ChunkKind = "struct"
	KindAbstractType ChunkKind = "abstract_type"
	KindUnknown      ChunkKind = "unknown"
)

// UnknownName is the sentinel used when no identifier could be extracted
// from a definition
const UnknownName = "unknown"

// Location identifies the source span of a chunk within a single file.
// Line numbers are 1-based and inclusive on both ends.
type Location struct {
	FilePath  string
	StartLine int
	EndLine   int
}

// Chunk is one documented Julia definition: the docstring that precedes a
// function, struct, or abstract type, paired with the definition itself.
// Chunks are value records and are never mutated after construction.
type Chunk struct {
	Kind           ChunkKind
	Name           string
	Documentation  string // trimmed docstring body, may be empty
	DefinitionText string // trimmed definition, opening keyword through closing end
	Location       Location
}

// ValidateKind checks if the chunk kind is in the closed set
func (c *Chunk) ValidateKind() error {
	switch c.Kind {
	case KindFunction, KindStruct, KindAbstractType, KindUnknown:
		return nil
	default:
		return errors.New("invalid chunk kind")
	}
}

// Validate performs comprehensive validation of the chunk
func (c *Chunk) Validate() error {
	if c.DefinitionText == "" {
		return ErrEmptyDefinition
	}

	if err := c.ValidateKind(); err != nil {
		return err
	}

	if c.Name == "" {
		return errors.New("chunk name is required (use the unknown sentinel)")
	}

	if c.Location.FilePath == "" {
		return errors.New("chunk location requires a file path")
	}

	if c.Location.StartLine <= 0 || c.Location.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}

	if c.Location.StartLine > c.Location.EndLine {
		return errors.New("start line must be before or equal to end line")
	}

	return nil
}

// ContentHash computes the SHA-256 hash of the chunk's projected text,
// used for deduplication and incremental re-indexing
func (c *Chunk) ContentHash() [32]byte {
	return sha256.Sum256([]byte(c.Document().Text))
}

// TokenCount estimates the number of tokens in the chunk's projected text.
// Uses the chars/4 heuristic; code tokens average about four characters.
func (c *Chunk) TokenCount() int {
	return (len(c.Documentation) + len(c.DefinitionText)) / 4
}
