// Package chunker turns Julia source trees into documented-definition chunks.
//
// ChunkFile handles one file: read it whole, scan for docstring-paired
// definitions, and build one types.Chunk per match with its kind, declared
// name, and 1-based line range. ChunkDir walks a directory tree and
// aggregates every .jl file's chunks in traversal order.
//
//	c := chunker.New()
//	chunks, failures, err := c.ChunkDir("/path/to/project/src")
//	if err != nil {
//	    log.Fatal(err) // root missing, fatal
//	}
//	for _, f := range failures {
//	    log.Printf("skipped %s: %v", f.FilePath, f.Err) // per-file, recoverable
//	}
//
// The error policy separates three situations a caller needs to tell
// apart: a missing root is fatal (types.ErrRootNotFound), a file that is
// not valid UTF-8 is skipped and recorded (types.ErrInvalidEncoding
// inside a FileFailure), and a file with no matches is simply an empty
// contribution. Unclassifiable definitions still produce chunks, with the
// unknown kind and name sentinels.
//
// Chunking is pure, synchronous, and stateless: the only I/O is one whole
// read per file, and repeated runs over unchanged files produce an
// identical chunk sequence.
package chunker
