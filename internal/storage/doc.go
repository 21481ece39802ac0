// Package storage provides SQLite-backed persistence for indexed Julia
// codebases.
//
// The schema tracks four entity kinds: projects (an indexed source tree),
// files (individual .jl files with content hashes for change detection),
// chunks (documented definitions extracted from those files), and
// embeddings (vector representations of chunk documents).
//
// Full-text search runs on an FTS5 table synchronized with the chunks
// table through triggers, covering the declared name, the docstring, and
// the definition body. Vector search uses the sqlite-vec extension when
// the binary is built with the sqlite_vec tag, and falls back to Go-side
// cosine similarity otherwise.
//
// All write paths go through a single connection with WAL enabled, which
// is the configuration SQLite handles best under concurrent readers.
package storage
