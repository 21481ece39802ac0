// Package parser extracts docstring-paired definitions from Julia source text.
//
// Julia convention places a triple-quoted docstring directly above the
// function, struct, or abstract type it documents. The parser finds those
// pairs with a single compiled pattern rather than a full Julia grammar:
//
//	matches := parser.ScanDefinitions(code)
//	for _, m := range matches {
//	    kind, name := parser.Classify(strings.TrimSpace(m.Definition))
//	    start, end := parser.LineRange(code, m.Start, m.End)
//	    fmt.Printf("%s %s at lines %d-%d\n", kind, name, start, end)
//	}
//
// # Matching Policy
//
// Matching is deliberately lazy: the docstring capture ends at the first
// closing """ and each definition alternative ends at the first following
// "end" keyword. There is no bracket or keyword balancing, so a definition
// containing a nested end-terminated block (an inner if, for, or begin) is
// truncated at the inner end. This mirrors how such corpora are chunked
// for retrieval in practice: the docstring plus the opening of the
// definition is what embeds well, and the scanner stays linear and
// regular. Undocumented definitions are skipped entirely: a pair only
// exists where a docstring immediately precedes the definition.
//
// # Classification
//
// Classify recognizes four shapes, checked in priority order:
//
//	abstract type Name ... end  -> abstract_type
//	mutable struct Name ... end -> struct
//	struct Name ... end         -> struct
//	function name(...) ... end  -> function
//
// Identifier tokens include Julia's trailing ! ? ' punctuation. Anything
// else classifies as unknown with the "unknown" name sentinel. Unknown
// chunks are valid data, never an error.
//
// All pattern state is package-level, compiled once, and immutable, so
// every function here is stateless and safe for concurrent use.
package parser
