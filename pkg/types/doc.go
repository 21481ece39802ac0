// Package types provides shared type definitions for the JuliaContext MCP server.
//
// This package defines the domain types used across the components of
// JuliaContext: chunks, their projected documents, and search results.
//
// # Core Types
//
// Chunk represents one documented Julia definition extracted from source:
// a docstring paired with the function, struct, or abstract type that
// immediately follows it.
//
//	chunk := types.Chunk{
//	    Kind:           types.KindFunction,
//	    Name:           "price",
//	    Documentation:  "Prices a vanilla option.",
//	    DefinitionText: "function price(payoff, model)\n  ...\nend",
//	    Location:       types.Location{FilePath: "src/pricing.jl", StartLine: 10, EndLine: 14},
//	}
//
// Kind is a closed enumeration: function, struct, abstract_type, or
// unknown. When a definition's identifier cannot be extracted, Name holds
// the "unknown" sentinel. Unclassifiable chunks are valid data, not
// errors.
//
// Document is the flat projection consumed by indexing and embedding
// collaborators:
//
//	doc := chunk.Document()
//	// doc.Text holds docstring + blank line + definition
//	// doc.Metadata holds file_path, start_line, end_line, name
//
// # Validation
//
// Chunks implement validation to ensure data integrity before storage:
//
//	if err := chunk.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Search Results
//
// SearchResult combines chunk metadata with relevance scoring. Relevance
// scores are normalized to [0, 1], higher is better.
package types
