package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/juliacontext/juliacontext-mcp/internal/chunker"
	"github.com/juliacontext/juliacontext-mcp/internal/embedder"
	"github.com/juliacontext/juliacontext-mcp/internal/storage"
)

// Indexer coordinates the indexing pipeline: chunk -> store -> embed
type Indexer struct {
	chunker  *chunker.Chunker
	storage  storage.Storage
	embedder embedder.Embedder // optional, nil disables embedding

	// Worker pool configuration
	workers int
}

// Config contains configuration for the indexer
type Config struct {
	Workers            int  // Number of concurrent workers (default: runtime.NumCPU())
	BatchSize          int  // Number of files to commit per transaction (default: 20)
	IncludeTests       bool // Whether to index test/ directories (default: true)
	GenerateEmbeddings bool // Whether to embed chunk documents after storing (default: false)
}

// Progress tracks indexing progress
type Progress struct {
	TotalFiles   int32
	IndexedFiles int32
	SkippedFiles int32
	FailedFiles  int32
	TotalChunks  int32
	StartTime    time.Time
	EndTime      time.Time
}

// Statistics contains statistics about the indexing operation
type Statistics struct {
	FilesIndexed   int
	FilesSkipped   int
	FilesFailed    int
	ChunksCreated  int
	ChunksEmbedded int
	Duration       time.Duration
	ErrorMessages  []string
}

// New creates a new Indexer instance
func New(store storage.Storage) *Indexer {
	return &Indexer{
		chunker: chunker.New(),
		storage: store,
		workers: runtime.NumCPU(),
	}
}

// WithEmbedder attaches an embedder used when Config.GenerateEmbeddings is set
func (idx *Indexer) WithEmbedder(emb embedder.Embedder) *Indexer {
	idx.embedder = emb
	return idx
}

// IndexProject indexes an entire Julia project
func (idx *Indexer) IndexProject(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = &Config{
			Workers:      runtime.NumCPU(),
			BatchSize:    20,
			IncludeTests: true,
		}
	}

	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	idx.workers = config.Workers

	startTime := time.Now()
	stats := &Statistics{
		ErrorMessages: make([]string, 0),
	}

	// Get or create project
	project, err := idx.getOrCreateProject(ctx, rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}

	// Discover Julia source files
	files, err := idx.chunker.DiscoverFiles(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	if !config.IncludeTests {
		files = excludeTestFiles(rootPath, files)
	}

	// Index files concurrently
	err = idx.indexFiles(ctx, project, files, config, stats)
	if err != nil {
		return nil, fmt.Errorf("failed to index files: %w", err)
	}

	// Generate embeddings for stored chunks
	if config.GenerateEmbeddings && idx.embedder != nil {
		if err := idx.embedProject(ctx, project, stats); err != nil {
			return nil, fmt.Errorf("failed to embed chunks: %w", err)
		}
	}

	// Update project statistics
	if err := idx.updateProjectStats(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project stats: %w", err)
	}

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// getOrCreateProject retrieves an existing project or creates a new one
func (idx *Indexer) getOrCreateProject(ctx context.Context, rootPath string) (*storage.Project, error) {
	project, err := idx.storage.GetProject(ctx, rootPath)
	if err == nil {
		return project, nil
	}

	if err != storage.ErrNotFound {
		return nil, err
	}

	project = &storage.Project{
		RootPath:     rootPath,
		IndexVersion: storage.CurrentSchemaVersion(),
	}

	// Try to extract package info from Project.toml
	tomlPath := filepath.Join(rootPath, "Project.toml")
	if info, err := parseProjectToml(tomlPath); err == nil {
		project.ProjectName = info.Name
		project.ProjectVersion = info.Version
	}

	if err := idx.storage.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// excludeTestFiles drops files under a top-level test directory
func excludeTestFiles(rootPath string, files []string) []string {
	kept := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(rootPath, f)
		if err != nil {
			kept = append(kept, f)
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) > 1 && parts[0] == "test" {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// indexFiles indexes a batch of files concurrently
func (idx *Indexer) indexFiles(ctx context.Context, project *storage.Project, files []string, config *Config, stats *Statistics) error {
	// Create worker pool with semaphore
	semaphore := make(chan struct{}, idx.workers)

	// Track progress with atomic counters
	var (
		indexed int32
		skipped int32
		failed  int32
		chunks  int32
	)

	// Process files in batches for transaction efficiency
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	// Use errgroup for concurrent processing with error propagation
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex // Protect stats.ErrorMessages

	for i := 0; i < len(files); i += batchSize {
		end := i + batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[i:end]

		g.Go(func() error {
			return idx.indexBatch(gctx, project, batch, semaphore, &indexed, &skipped, &failed, &chunks, &mu, stats)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	stats.FilesIndexed = int(indexed)
	stats.FilesSkipped = int(skipped)
	stats.FilesFailed = int(failed)
	stats.ChunksCreated = int(chunks)

	return nil
}

// indexBatch indexes a batch of files within a transaction
func (idx *Indexer) indexBatch(ctx context.Context, project *storage.Project, files []string,
	semaphore chan struct{}, indexed, skipped, failed, chunks *int32,
	mu *sync.Mutex, stats *Statistics) error {

	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, filePath := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case semaphore <- struct{}{}:
			// Acquire semaphore
		}

		err := idx.indexFile(ctx, tx, project, filePath, indexed, skipped, chunks)
		<-semaphore // Release semaphore

		if err != nil {
			atomic.AddInt32(failed, 1)
			mu.Lock()
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", filePath, err))
			mu.Unlock()
			// Continue with other files
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// indexFile indexes a single file
func (idx *Indexer) indexFile(ctx context.Context, store storage.Storage, project *storage.Project,
	filePath string, indexed, skipped, chunks *int32) error {

	relPath, err := filepath.Rel(project.RootPath, filePath)
	if err != nil {
		return err
	}

	hash, modTime, sizeBytes, err := computeFileHash(filePath)
	if err != nil {
		return err
	}

	// Check if file has changed and handle incremental update
	shouldSkip, err := idx.checkFileChanged(ctx, store, project.ID, relPath, hash, skipped)
	if err != nil {
		return err
	}
	if shouldSkip {
		return nil
	}

	file := &storage.File{
		ProjectID:   project.ID,
		FilePath:    relPath,
		ContentHash: hash,
		ModTime:     modTime,
		SizeBytes:   sizeBytes,
	}

	// Extract chunks. A decode failure is recorded on the file row and
	// the file is kept in the index with zero chunks.
	fileChunks, chunkErr := idx.chunker.ChunkFile(filePath)
	if chunkErr != nil {
		msg := chunkErr.Error()
		file.DecodeError = &msg
	}

	if err := store.UpsertFile(ctx, file); err != nil {
		return err
	}
	if chunkErr != nil {
		return chunkErr
	}

	chunkCount := 0
	for i := range fileChunks {
		record := storage.FromTypesChunk(fileChunks[i], file.ID)
		if err := store.UpsertChunk(ctx, record); err != nil {
			return fmt.Errorf("failed to store chunk: %w", err)
		}
		chunkCount++
	}

	atomic.AddInt32(indexed, 1)
	atomic.AddInt32(chunks, int32(chunkCount))

	return nil
}

// checkFileChanged checks if a file has changed and needs re-indexing
func (idx *Indexer) checkFileChanged(ctx context.Context, store storage.Storage, projectID int64,
	relPath string, hash [32]byte, skipped *int32) (bool, error) {

	existingFile, err := store.GetFile(ctx, projectID, relPath)
	if err == storage.ErrNotFound {
		// New file, needs indexing
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if existingFile.ContentHash == hash {
		// File unchanged, skip
		atomic.AddInt32(skipped, 1)
		return true, nil
	}

	// File changed - delete old chunks before re-indexing
	if err := store.DeleteChunksByFile(ctx, existingFile.ID); err != nil {
		return false, fmt.Errorf("failed to delete old chunks: %w", err)
	}

	return false, nil
}

// embedProject generates embeddings for chunks that don't have one yet
func (idx *Indexer) embedProject(ctx context.Context, project *storage.Project, stats *Statistics) error {
	files, err := idx.storage.ListFiles(ctx, project.ID)
	if err != nil {
		return err
	}

	embedded := 0
	for _, file := range files {
		chunks, err := idx.storage.ListChunksByFile(ctx, file.ID)
		if err != nil {
			return err
		}

		for _, chunk := range chunks {
			if _, err := idx.storage.GetEmbedding(ctx, chunk.ID); err == nil {
				continue // already embedded
			}

			doc := chunk.ToTypesChunk(file.FilePath).Document()
			emb, err := idx.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: doc.Text})
			if err != nil {
				stats.ErrorMessages = append(stats.ErrorMessages,
					fmt.Sprintf("embed chunk %d: %v", chunk.ID, err))
				continue
			}

			record := &storage.Embedding{
				ChunkID:   chunk.ID,
				Vector:    storage.SerializeVector(emb.Vector),
				Dimension: emb.Dimension,
				Provider:  emb.Provider,
				Model:     emb.Model,
			}
			if err := idx.storage.UpsertEmbedding(ctx, record); err != nil {
				return fmt.Errorf("failed to store embedding: %w", err)
			}
			embedded++
		}
	}

	stats.ChunksEmbedded = embedded
	return nil
}

// updateProjectStats updates the project's file and chunk counts
func (idx *Indexer) updateProjectStats(ctx context.Context, project *storage.Project) error {
	files, err := idx.storage.ListFiles(ctx, project.ID)
	if err != nil {
		return err
	}

	totalChunks := 0
	for _, file := range files {
		chunks, err := idx.storage.ListChunksByFile(ctx, file.ID)
		if err != nil {
			return err
		}
		totalChunks += len(chunks)
	}

	project.TotalFiles = len(files)
	project.TotalChunks = totalChunks
	project.LastIndexedAt = time.Now()

	return idx.storage.UpdateProject(ctx, project)
}

// computeFileHash computes SHA-256 hash of a file
func computeFileHash(filePath string) ([32]byte, time.Time, int64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}

	var result [32]byte
	copy(result[:], hash.Sum(nil))

	return result, info.ModTime(), info.Size(), nil
}

// projectTomlInfo contains parsed Project.toml information
type projectTomlInfo struct {
	Name    string
	Version string
}

// parseProjectToml extracts the package name and version from a Project.toml.
// Only top-level name/version keys are read; a full TOML parser is not
// needed for the two fields Julia's Pkg always writes first.
func parseProjectToml(tomlPath string) (*projectTomlInfo, error) {
	content, err := os.ReadFile(tomlPath)
	if err != nil {
		return nil, err
	}

	info := &projectTomlInfo{}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			break // end of the top-level table
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		switch key {
		case "name":
			info.Name = value
		case "version":
			info.Version = value
		}
	}

	return info, nil
}
