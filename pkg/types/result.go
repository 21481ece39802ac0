package types

// SearchResult represents a single search result with relevance information
type SearchResult struct {
	// Identification
	ChunkID int64
	Rank    int // Position in result set (1-based)

	// Scoring
	RelevanceScore float64 // Combined score from vector + BM25 + RRF

	// Chunk metadata
	Kind     ChunkKind
	Name     string
	Location *Location

	// Content
	Documentation string
	Definition    string
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.ChunkID == 0 {
		return ErrInvalidChunkID
	}

	if sr.Rank < 1 {
		return ErrInvalidRank
	}

	if sr.RelevanceScore < 0 || sr.RelevanceScore > 1 {
		return ErrInvalidRelevanceScore
	}

	if sr.Location == nil {
		return ErrMissingLocation
	}

	if sr.Definition == "" {
		return ErrEmptyContent
	}

	return nil
}
