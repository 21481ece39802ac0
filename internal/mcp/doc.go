// Package mcp implements the Model Context Protocol server surface.
//
// Three tools are exposed over stdio: index_codebase walks a Julia project
// and stores its documented definitions, search_code runs hybrid, vector,
// or keyword queries against the index, and get_status reports per-project
// statistics and index health.
//
// Handlers translate tool arguments into calls on the storage, indexer,
// and searcher packages. A single embedder instance is shared between the
// indexer and the searcher so embeddings cached while indexing are reused
// when queries are embedded.
package mcp
