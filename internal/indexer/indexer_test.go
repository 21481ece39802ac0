package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliacontext/juliacontext-mcp/internal/embedder"
	"github.com/juliacontext/juliacontext-mcp/internal/storage"
)

const documentedFunction = `"""
Compute the Euclidean norm of a vector.
"""
function mynorm(v)
    sqrt(sum(abs2, v))
end
`

const documentedStruct = `"""
A 2D point.
"""
struct Point
    x::Float64
    y::Float64
end
`

func newTestIndexer(t *testing.T) (*Indexer, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store), store
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestIndexProject(t *testing.T) {
	idx, store := newTestIndexer(t)
	root := writeProject(t, map[string]string{
		"Project.toml":  "name = \"TestPkg\"\nversion = \"1.2.3\"\n",
		"src/norm.jl":   documentedFunction,
		"src/points.jl": documentedStruct,
	})

	ctx := context.Background()
	stats, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesFailed)
	assert.Equal(t, 2, stats.ChunksCreated)
	assert.Empty(t, stats.ErrorMessages)

	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, "TestPkg", project.ProjectName)
	assert.Equal(t, "1.2.3", project.ProjectVersion)
	assert.Equal(t, 2, project.TotalFiles)
	assert.Equal(t, 2, project.TotalChunks)
	assert.False(t, project.LastIndexedAt.IsZero())
}

func TestIndexProjectStoresChunkFields(t *testing.T) {
	idx, store := newTestIndexer(t)
	root := writeProject(t, map[string]string{
		"src/norm.jl": documentedFunction,
	})

	ctx := context.Background()
	_, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)

	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	file, err := store.GetFile(ctx, project.ID, filepath.Join("src", "norm.jl"))
	require.NoError(t, err)

	chunks, err := store.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	chunk := chunks[0]
	assert.Equal(t, "function", chunk.Kind)
	assert.Equal(t, "mynorm", chunk.Name)
	assert.Equal(t, "Compute the Euclidean norm of a vector.", chunk.Docstring)
	assert.Contains(t, chunk.Definition, "function mynorm(v)")
	assert.Equal(t, 1, chunk.StartLine)
	assert.Equal(t, 6, chunk.EndLine)
}

func TestIndexProjectSkipsUnchangedFiles(t *testing.T) {
	idx, _ := newTestIndexer(t)
	root := writeProject(t, map[string]string{
		"src/norm.jl": documentedFunction,
	})

	ctx := context.Background()
	_, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)

	stats, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesSkipped)
}

func TestIndexProjectReindexesChangedFile(t *testing.T) {
	idx, store := newTestIndexer(t)
	root := writeProject(t, map[string]string{
		"src/norm.jl": documentedFunction,
	})

	ctx := context.Background()
	_, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)

	// Rewrite the file with a different definition
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "norm.jl"),
		[]byte(documentedStruct), 0o644))

	stats, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)

	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	file, err := store.GetFile(ctx, project.ID, filepath.Join("src", "norm.jl"))
	require.NoError(t, err)

	chunks, err := store.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "struct", chunks[0].Kind)
	assert.Equal(t, "Point", chunks[0].Name)
}

func TestIndexProjectRecordsDecodeFailures(t *testing.T) {
	idx, store := newTestIndexer(t)
	root := writeProject(t, map[string]string{
		"src/good.jl": documentedFunction,
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "bad.jl"),
		[]byte{0xff, 0xfe, 0x00}, 0o644))

	ctx := context.Background()
	stats, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesFailed)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "bad.jl")

	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	file, err := store.GetFile(ctx, project.ID, filepath.Join("src", "bad.jl"))
	require.NoError(t, err)
	require.NotNil(t, file.DecodeError)

	chunks, err := store.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestIndexProjectExcludeTests(t *testing.T) {
	idx, store := newTestIndexer(t)
	root := writeProject(t, map[string]string{
		"src/norm.jl":      documentedFunction,
		"test/runtests.jl": documentedStruct,
	})

	ctx := context.Background()
	stats, err := idx.IndexProject(ctx, root, &Config{IncludeTests: false})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)

	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	_, err = store.GetFile(ctx, project.ID, filepath.Join("test", "runtests.jl"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIndexProjectGeneratesEmbeddings(t *testing.T) {
	idx, store := newTestIndexer(t)
	local, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)
	idx.WithEmbedder(local)

	root := writeProject(t, map[string]string{
		"src/norm.jl": documentedFunction,
	})

	ctx := context.Background()
	stats, err := idx.IndexProject(ctx, root, &Config{
		IncludeTests:       true,
		GenerateEmbeddings: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChunksEmbedded)

	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	file, err := store.GetFile(ctx, project.ID, filepath.Join("src", "norm.jl"))
	require.NoError(t, err)
	chunks, err := store.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	emb, err := store.GetEmbedding(ctx, chunks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, embedder.LocalDimension, emb.Dimension)
	assert.Equal(t, embedder.ProviderLocal, emb.Provider)

	// Second run should not re-embed
	stats, err = idx.IndexProject(ctx, root, &Config{
		IncludeTests:       true,
		GenerateEmbeddings: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ChunksEmbedded)
}

func TestIndexProjectMissingRoot(t *testing.T) {
	idx, _ := newTestIndexer(t)

	_, err := idx.IndexProject(context.Background(), "/nonexistent/path", nil)
	assert.Error(t, err)
}

func TestParseProjectToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Project.toml")
	content := `name = "Chunks"
uuid = "d9a73f18-4f4c-4a2b-8c7e-000000000000"
version = "0.3.1"

[deps]
name = "NotThePackageName"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	info, err := parseProjectToml(path)
	require.NoError(t, err)
	assert.Equal(t, "Chunks", info.Name)
	assert.Equal(t, "0.3.1", info.Version)
}

func TestIndexLock(t *testing.T) {
	var lock IndexLock

	require.True(t, lock.TryAcquire())
	assert.False(t, lock.TryAcquire())

	lock.Release()
	assert.True(t, lock.TryAcquire())
}
