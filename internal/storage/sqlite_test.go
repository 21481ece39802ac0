package storage

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestProject(t *testing.T, store *SQLiteStorage) *Project {
	t.Helper()
	project := &Project{
		RootPath:       "/tmp/MyPackage.jl",
		ProjectName:    "MyPackage",
		ProjectVersion: "0.1.0",
		IndexVersion:   CurrentSchemaVersion(),
	}
	require.NoError(t, store.CreateProject(context.Background(), project))
	require.NotZero(t, project.ID)
	return project
}

func newTestFile(t *testing.T, store *SQLiteStorage, projectID int64, path string) *File {
	t.Helper()
	file := &File{
		ProjectID:   projectID,
		FilePath:    path,
		ContentHash: sha256.Sum256([]byte(path)),
		ModTime:     time.Now(),
		SizeBytes:   128,
	}
	require.NoError(t, store.UpsertFile(context.Background(), file))
	require.NotZero(t, file.ID)
	return file
}

func newTestChunk(fileID int64, name, kind, docstring, definition string, startLine, endLine int) *Chunk {
	return &Chunk{
		FileID:      fileID,
		Kind:        kind,
		Name:        name,
		Docstring:   docstring,
		Definition:  definition,
		ContentHash: sha256.Sum256([]byte(docstring + definition)),
		TokenCount:  (len(docstring) + len(definition)) / 4,
		StartLine:   startLine,
		EndLine:     endLine,
	}
}

func TestProjectCRUD(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	project := newTestProject(t, store)

	got, err := store.GetProject(ctx, project.RootPath)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
	assert.Equal(t, "MyPackage", got.ProjectName)
	assert.Equal(t, "0.1.0", got.ProjectVersion)

	project.TotalFiles = 3
	project.TotalChunks = 12
	project.LastIndexedAt = time.Now()
	require.NoError(t, store.UpdateProject(ctx, project))

	got, err = store.GetProject(ctx, project.RootPath)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalFiles)
	assert.Equal(t, 12, got.TotalChunks)
	assert.False(t, got.LastIndexedAt.IsZero())
}

func TestGetProjectNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetProject(context.Background(), "/nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileUpsertIsIdempotent(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)

	file := newTestFile(t, store, project.ID, "src/integrate.jl")
	firstID := file.ID

	// Second upsert of the same path must reuse the row
	again := &File{
		ProjectID:   project.ID,
		FilePath:    "src/integrate.jl",
		ContentHash: sha256.Sum256([]byte("changed")),
		ModTime:     time.Now(),
		SizeBytes:   256,
	}
	require.NoError(t, store.UpsertFile(ctx, again))
	assert.Equal(t, firstID, again.ID)

	got, err := store.GetFile(ctx, project.ID, "src/integrate.jl")
	require.NoError(t, err)
	assert.Equal(t, int64(256), got.SizeBytes)
	assert.Equal(t, again.ContentHash, got.ContentHash)
}

func TestFileDecodeErrorRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)

	msg := "invalid UTF-8 encoding"
	file := &File{
		ProjectID:   project.ID,
		FilePath:    "src/broken.jl",
		ContentHash: sha256.Sum256([]byte("broken")),
		ModTime:     time.Now(),
		SizeBytes:   10,
		DecodeError: &msg,
	}
	require.NoError(t, store.UpsertFile(ctx, file))

	got, err := store.GetFileByID(ctx, file.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DecodeError)
	assert.Equal(t, msg, *got.DecodeError)

	clean := newTestFile(t, store, project.ID, "src/clean.jl")
	gotClean, err := store.GetFileByID(ctx, clean.ID)
	require.NoError(t, err)
	assert.Nil(t, gotClean.DecodeError)
}

func TestChunkCRUD(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)
	file := newTestFile(t, store, project.ID, "src/solver.jl")

	chunk := newTestChunk(file.ID, "solve", "function",
		"Solve the linear system Ax = b.",
		"function solve(A, b)\n    A \\ b\nend", 1, 6)
	require.NoError(t, store.UpsertChunk(ctx, chunk))
	require.NotZero(t, chunk.ID)

	got, err := store.GetChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, "solve", got.Name)
	assert.Equal(t, "function", got.Kind)
	assert.Equal(t, "Solve the linear system Ax = b.", got.Docstring)
	assert.Equal(t, chunk.ContentHash, got.ContentHash)
	assert.Equal(t, 1, got.StartLine)
	assert.Equal(t, 6, got.EndLine)

	// Upsert on the same span updates in place
	updated := newTestChunk(file.ID, "solve", "function",
		"Solve the linear system Ax = b using backslash.",
		"function solve(A, b)\n    A \\ b\nend", 1, 6)
	require.NoError(t, store.UpsertChunk(ctx, updated))
	assert.Equal(t, chunk.ID, updated.ID)

	chunks, err := store.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Docstring, "backslash")

	require.NoError(t, store.DeleteChunk(ctx, chunk.ID))
	_, err = store.GetChunk(ctx, chunk.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteChunksByFile(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)
	file := newTestFile(t, store, project.ID, "src/types.jl")

	for i := 0; i < 3; i++ {
		chunk := newTestChunk(file.ID, "Point", "struct", "A 2D point.",
			"struct Point\n    x::Float64\n    y::Float64\nend", i*10+1, i*10+5)
		require.NoError(t, store.UpsertChunk(ctx, chunk))
	}

	require.NoError(t, store.DeleteChunksByFile(ctx, file.ID))

	chunks, err := store.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestEmbeddingCRUD(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)
	file := newTestFile(t, store, project.ID, "src/embed.jl")

	chunk := newTestChunk(file.ID, "norm", "function", "Compute the norm.",
		"function norm(v)\n    sqrt(sum(abs2, v))\nend", 1, 5)
	require.NoError(t, store.UpsertChunk(ctx, chunk))

	emb := &Embedding{
		ChunkID:   chunk.ID,
		Vector:    SerializeVector([]float32{0.1, 0.2, 0.3}),
		Dimension: 3,
		Provider:  "ollama",
		Model:     "nomic-embed-text",
	}
	require.NoError(t, store.UpsertEmbedding(ctx, emb))

	got, err := store.GetEmbedding(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Dimension)
	assert.Equal(t, "ollama", got.Provider)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, DeserializeVector(got.Vector), 1e-6)

	require.NoError(t, store.DeleteEmbedding(ctx, chunk.ID))
	_, err = store.GetEmbedding(ctx, chunk.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchText(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)
	file := newTestFile(t, store, project.ID, "src/ode.jl")

	chunks := []*Chunk{
		newTestChunk(file.ID, "euler_step", "function",
			"Advance the state by one explicit Euler step.",
			"function euler_step(f, y, t, dt)\n    y + dt * f(t, y)\nend", 1, 6),
		newTestChunk(file.ID, "Trajectory", "struct",
			"A recorded solver trajectory.",
			"struct Trajectory\n    times::Vector{Float64}\nend", 10, 14),
	}
	for _, c := range chunks {
		require.NoError(t, store.UpsertChunk(ctx, c))
	}

	results, err := store.SearchText(ctx, project.ID, "euler", 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, chunks[0].ID, results[0].ChunkID)
	assert.Greater(t, results[0].BM25Score, 0.0)
}

func TestSearchTextHyphenatedQuery(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)
	file := newTestFile(t, store, project.ID, "src/pricing.jl")

	chunk := newTestChunk(file.ID, "price", "function",
		"Black-Scholes price of a European call and its put counterpart.",
		"function price(S, K, r, sigma, T)\n    S\nend", 1, 5)
	require.NoError(t, store.UpsertChunk(ctx, chunk))

	// Hyphens and operator words must be treated as plain text, not FTS5 syntax
	for _, query := range []string{"Black-Scholes price", "call AND put", "price (call)"} {
		results, err := store.SearchText(ctx, project.ID, query, 10, nil)
		require.NoError(t, err, "query %q", query)
		require.Len(t, results, 1, "query %q", query)
		assert.Equal(t, chunk.ID, results[0].ChunkID)
	}
}

func TestSearchTextKindFilter(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)
	file := newTestFile(t, store, project.ID, "src/mesh.jl")

	fn := newTestChunk(file.ID, "refine", "function",
		"Refine the mesh once.", "function refine(m)\n    m\nend", 1, 5)
	st := newTestChunk(file.ID, "Mesh", "struct",
		"A triangular mesh to refine.", "struct Mesh\n    cells::Int\nend", 10, 14)
	require.NoError(t, store.UpsertChunk(ctx, fn))
	require.NoError(t, store.UpsertChunk(ctx, st))

	results, err := store.SearchText(ctx, project.ID, "refine", 10,
		&SearchFilters{Kinds: []string{"struct"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, st.ID, results[0].ChunkID)
}

func TestSearchTextFilePatternFilter(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)
	fileA := newTestFile(t, store, project.ID, "src/core.jl")
	fileB := newTestFile(t, store, project.ID, "test/core_test.jl")

	a := newTestChunk(fileA.ID, "run", "function", "Run the pipeline.",
		"function run()\nend", 1, 4)
	b := newTestChunk(fileB.ID, "run", "function", "Run the pipeline test.",
		"function run()\nend", 1, 4)
	require.NoError(t, store.UpsertChunk(ctx, a))
	require.NoError(t, store.UpsertChunk(ctx, b))

	results, err := store.SearchText(ctx, project.ID, "pipeline", 10,
		&SearchFilters{FilePattern: "src/*"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, a.ID, results[0].ChunkID)
}

func TestSearchTextEmptyQuery(t *testing.T) {
	store := newTestStorage(t)
	project := newTestProject(t, store)

	_, err := store.SearchText(context.Background(), project.ID, "", 10, nil)
	assert.Error(t, err)
}

func TestSearchVectorFallbackRanking(t *testing.T) {
	if VectorExtensionAvailable {
		t.Skip("test targets the Go fallback path")
	}

	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)
	file := newTestFile(t, store, project.ID, "src/vec.jl")

	vectors := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	ids := make([]int64, len(vectors))
	for i, v := range vectors {
		chunk := newTestChunk(file.ID, "f", "function", "doc",
			"function f()\nend", i*10+1, i*10+3)
		require.NoError(t, store.UpsertChunk(ctx, chunk))
		require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
			ChunkID:   chunk.ID,
			Vector:    SerializeVector(v),
			Dimension: 3,
			Provider:  "local",
			Model:     "test",
		}))
		ids[i] = chunk.ID
	}

	results, err := store.SearchVector(ctx, project.ID, []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, ids[0], results[0].ChunkID)
	assert.Equal(t, ids[1], results[1].ChunkID)
	assert.Greater(t, results[0].SimilarityScore, results[1].SimilarityScore)
}

func TestGetStatus(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)
	file := newTestFile(t, store, project.ID, "src/status.jl")

	chunk := newTestChunk(file.ID, "go", "function", "Go.",
		"function go()\nend", 1, 4)
	require.NoError(t, store.UpsertChunk(ctx, chunk))

	status, err := store.GetStatus(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.FilesCount)
	assert.Equal(t, 1, status.ChunksCount)
	assert.Equal(t, 0, status.EmbeddingsCount)
	assert.True(t, status.Health.DatabaseAccessible)
	assert.False(t, status.Health.EmbeddingsAvailable)
	assert.Greater(t, status.IndexSizeMB, 0.0)
}

func TestTransactionCommitAndRollback(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)

	// Committed writes are visible
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	file := &File{
		ProjectID:   project.ID,
		FilePath:    "src/tx.jl",
		ContentHash: sha256.Sum256([]byte("tx")),
		ModTime:     time.Now(),
		SizeBytes:   1,
	}
	require.NoError(t, tx.UpsertFile(ctx, file))
	require.NoError(t, tx.Commit())

	_, err = store.GetFile(ctx, project.ID, "src/tx.jl")
	require.NoError(t, err)

	// Rolled back writes are not
	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)
	ghost := &File{
		ProjectID:   project.ID,
		FilePath:    "src/ghost.jl",
		ContentHash: sha256.Sum256([]byte("ghost")),
		ModTime:     time.Now(),
		SizeBytes:   1,
	}
	require.NoError(t, tx.UpsertFile(ctx, ghost))
	require.NoError(t, tx.Rollback())

	_, err = store.GetFile(ctx, project.ID, "src/ghost.jl")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNestedTransactionRejected(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
}

func TestDeleteFileCascades(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	project := newTestProject(t, store)
	file := newTestFile(t, store, project.ID, "src/cascade.jl")

	chunk := newTestChunk(file.ID, "f", "function", "doc",
		"function f()\nend", 1, 3)
	require.NoError(t, store.UpsertChunk(ctx, chunk))
	require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
		ChunkID:   chunk.ID,
		Vector:    SerializeVector([]float32{1}),
		Dimension: 1,
		Provider:  "local",
		Model:     "test",
	}))

	require.NoError(t, store.DeleteFile(ctx, file.ID))

	_, err := store.GetChunk(ctx, chunk.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetEmbedding(ctx, chunk.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
