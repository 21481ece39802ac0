package storage

import (
	"context"
	"time"

	"github.com/juliacontext/juliacontext-mcp/pkg/types"
)

// Storage defines the interface for persisting and querying indexed chunks
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, rootPath string) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error

	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, projectID int64, filePath string) (*File, error)
	GetFileByID(ctx context.Context, fileID int64) (*File, error)
	DeleteFile(ctx context.Context, fileID int64) error
	ListFiles(ctx context.Context, projectID int64) ([]*File, error)

	// Chunk operations
	UpsertChunk(ctx context.Context, chunk *Chunk) error
	GetChunk(ctx context.Context, chunkID int64) (*Chunk, error)
	ListChunksByFile(ctx context.Context, fileID int64) ([]*Chunk, error)
	DeleteChunk(ctx context.Context, chunkID int64) error
	DeleteChunksByFile(ctx context.Context, fileID int64) error

	// Embedding operations
	UpsertEmbedding(ctx context.Context, embedding *Embedding) error
	GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error)
	DeleteEmbedding(ctx context.Context, chunkID int64) error

	// Search operations
	SearchVector(ctx context.Context, projectID int64, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error)
	SearchText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error)

	// Status operations
	GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Project represents an indexed Julia codebase
type Project struct {
	ID             int64
	RootPath       string
	ProjectName    string // from Project.toml, if present
	ProjectVersion string
	TotalFiles     int
	TotalChunks    int
	IndexVersion   string
	LastIndexedAt  time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// File represents a tracked Julia source file
type File struct {
	ID            int64
	ProjectID     int64
	FilePath      string // Relative to project root
	ContentHash   [32]byte
	ModTime       time.Time
	SizeBytes     int64
	DecodeError   *string // Nullable; set when the file was not valid UTF-8
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Chunk represents a stored documented-definition chunk
type Chunk struct {
	ID          int64
	FileID      int64
	Kind        string
	Name        string
	Docstring   string
	Definition  string
	ContentHash [32]byte
	TokenCount  int
	StartLine   int
	EndLine     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Embedding represents a vector embedding for a chunk
type Embedding struct {
	ID        int64
	ChunkID   int64
	Vector    []byte // Serialized float32 array
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// SearchFilters contains filters for narrowing search results
type SearchFilters struct {
	Kinds        []string // Filter by chunk kind
	Names        []string // Filter by declared name
	FilePattern  string   // Glob pattern for file paths
	MinRelevance float64  // Minimum relevance score
}

// VectorResult represents a result from vector similarity search
type VectorResult struct {
	ChunkID         int64
	SimilarityScore float64
}

// TextResult represents a result from full-text search
type TextResult struct {
	ChunkID   int64
	BM25Score float64
}

// ProjectStatus contains statistics about an indexed project
type ProjectStatus struct {
	Project         *Project
	FilesCount      int
	ChunksCount     int
	EmbeddingsCount int
	IndexSizeMB     float64
	LastIndexedAt   time.Time
	Health          HealthStatus
}

// HealthStatus represents the health of the index
type HealthStatus struct {
	DatabaseAccessible  bool
	EmbeddingsAvailable bool
	FTSIndexesBuilt     bool
}

// ToTypesChunk converts a storage Chunk to a types.Chunk. The file path is
// supplied by the caller because chunk rows only carry the file ID.
func (c *Chunk) ToTypesChunk(filePath string) types.Chunk {
	return types.Chunk{
		Kind:           types.ChunkKind(c.Kind),
		Name:           c.Name,
		Documentation:  c.Docstring,
		DefinitionText: c.Definition,
		Location: types.Location{
			FilePath:  filePath,
			StartLine: c.StartLine,
			EndLine:   c.EndLine,
		},
	}
}

// FromTypesChunk converts a types.Chunk to a storage Chunk
func FromTypesChunk(c types.Chunk, fileID int64) *Chunk {
	return &Chunk{
		FileID:      fileID,
		Kind:        string(c.Kind),
		Name:        c.Name,
		Docstring:   c.Documentation,
		Definition:  c.DefinitionText,
		ContentHash: c.ContentHash(),
		TokenCount:  c.TokenCount(),
		StartLine:   c.Location.StartLine,
		EndLine:     c.Location.EndLine,
	}
}
