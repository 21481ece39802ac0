// Package indexer orchestrates the indexing pipeline for a Julia project:
// discover .jl files, extract documented definitions, persist them, and
// optionally embed each chunk's document text.
//
// Files are processed in batches, one SQLite transaction per batch, with
// a bounded worker pool on top of errgroup. Re-indexing is incremental:
// a file whose SHA-256 content hash matches the stored one is skipped
// outright, and a changed file has its old chunks deleted before the new
// ones are written.
//
// Files that fail to decode as UTF-8 stay in the index with the error
// recorded on the file row, so status reporting can show what was
// skipped and why.
package indexer
