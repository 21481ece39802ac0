package chunker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/juliacontext/juliacontext-mcp/internal/parser"
	"github.com/juliacontext/juliacontext-mcp/pkg/types"
)

// SourceExtension is the file extension the tree walker selects
const SourceExtension = ".jl"

// Chunker extracts documented-definition chunks from Julia source files
type Chunker struct{}

// New creates a new Chunker instance
func New() *Chunker {
	return &Chunker{}
}

// ChunkFile reads one Julia source file and returns its chunks in source
// order. A file with no docstring-paired definitions yields an empty
// slice, not an error. Bytes that are not valid UTF-8 fail with
// types.ErrInvalidEncoding.
func (c *Chunker) ChunkFile(filePath string) ([]types.Chunk, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w", filePath, types.ErrInvalidEncoding)
	}

	code := string(data)
	matches := parser.ScanDefinitions(code)

	chunks := make([]types.Chunk, 0, len(matches))
	for _, m := range matches {
		startLine, endLine := parser.LineRange(code, m.Start, m.End)

		definition := strings.TrimSpace(m.Definition)
		kind, name := parser.Classify(definition)

		chunks = append(chunks, types.Chunk{
			Kind:           kind,
			Name:           name,
			Documentation:  strings.TrimSpace(m.Documentation),
			DefinitionText: definition,
			Location: types.Location{
				FilePath:  filePath,
				StartLine: startLine,
				EndLine:   endLine,
			},
		})
	}

	return chunks, nil
}

// FileFailure records a file that could not be chunked during a tree walk
type FileFailure struct {
	FilePath string
	Err      error
}

// DiscoverFiles recursively enumerates the Julia source files under root,
// skipping hidden directories. The order is filepath.Walk's lexical
// traversal order and is stable across runs on an unchanged tree. A
// missing or non-directory root fails with types.ErrRootNotFound.
func (c *Chunker) DiscoverFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", root, types.ErrRootNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", root, types.ErrRootNotFound)
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, SourceExtension) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// ChunkDir chunks every Julia source file under root and concatenates the
// results: traversal order across files, match order within each file.
// Files that fail to read or decode are skipped and recorded in the
// returned failures, never silently dropped; the walk continues past them.
func (c *Chunker) ChunkDir(root string) ([]types.Chunk, []FileFailure, error) {
	files, err := c.DiscoverFiles(root)
	if err != nil {
		return nil, nil, err
	}

	var all []types.Chunk
	var failures []FileFailure

	for _, path := range files {
		chunks, err := c.ChunkFile(path)
		if err != nil {
			failures = append(failures, FileFailure{FilePath: path, Err: err})
			continue
		}
		all = append(all, chunks...)
	}

	return all, failures, nil
}
