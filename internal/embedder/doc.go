// Package embedder generates vector embeddings for chunk documents.
//
// Three providers are available: ollama (the default, talking to a local
// Ollama server), openai, and local (deterministic hash vectors, no
// network). Provider selection happens in the factory, driven by the
// JULIACONTEXT_EMBEDDING_PROVIDER environment variable with OPENAI_API_KEY
// as an auto-detect fallback.
//
// All providers share an LRU cache keyed by the SHA-256 of the input text,
// so re-indexing an unchanged codebase never re-embeds. Network providers
// retry with exponential backoff.
package embedder
