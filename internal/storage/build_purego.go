//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package storage

// Compiled when building without CGO or with the purego tag. Uses the
// pure Go SQLite implementation, so no C compiler is required. Vector
// similarity falls back to Go-side computation in this configuration.
//
// Build command:
//   CGO_ENABLED=0 go build -tags "purego" ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// VectorExtensionAvailable indicates if vector extension is available
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
