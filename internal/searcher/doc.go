// Package searcher implements hybrid search over indexed Julia chunks.
//
// Three modes are supported: vector (cosine similarity over embeddings),
// keyword (BM25 over the FTS index), and hybrid, which runs both legs
// concurrently and merges them with Reciprocal Rank Fusion. In hybrid
// mode a failure of one leg degrades the search to the other rather than
// failing the request.
//
// Responses can be cached in an LRU keyed by a hash of the query, mode,
// project, and filters, with a per-request TTL. The cache stores and
// returns deep copies so callers can mutate results freely.
package searcher
