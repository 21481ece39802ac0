package parser

import (
	"regexp"
	"strings"

	"github.com/juliacontext/juliacontext-mcp/pkg/types"
)

// Identifier tokens allow the trailing punctuation Julia permits at the
// end of a name (push!, isempty?, primed variants).
var (
	functionNamePattern = regexp.MustCompile(`^function\s+([a-zA-Z0-9_!?']+)`)
	abstractNamePattern = regexp.MustCompile(`^abstract\s+type\s+([a-zA-Z0-9_!?']+)`)
	mutableNamePattern  = regexp.MustCompile(`^mutable\s+struct\s+([a-zA-Z0-9_!?']+)`)
	structNamePattern   = regexp.MustCompile(`^struct\s+([a-zA-Z0-9_!?']+)`)
)

// Classify inspects the leading tokens of a trimmed definition and returns
// its kind and declared name. Name extraction stops at the first character
// outside the identifier set (whitespace, parentheses, type parameters,
// subtype operators). A definition that opens with none of the known
// keywords classifies as KindUnknown; a definition whose name cannot be
// parsed keeps its kind with the unknown name sentinel. Neither case is an
// error.
func Classify(definition string) (types.ChunkKind, string) {
	switch {
	case strings.HasPrefix(definition, "abstract type"):
		return types.KindAbstractType, extractName(abstractNamePattern, definition)
	case strings.HasPrefix(definition, "mutable struct"):
		return types.KindStruct, extractName(mutableNamePattern, definition)
	case strings.HasPrefix(definition, "struct"):
		return types.KindStruct, extractName(structNamePattern, definition)
	case strings.HasPrefix(definition, "function"):
		return types.KindFunction, extractName(functionNamePattern, definition)
	default:
		return types.KindUnknown, types.UnknownName
	}
}

// extractName applies a name pattern and falls back to the sentinel
func extractName(pattern *regexp.Regexp, definition string) string {
	m := pattern.FindStringSubmatch(definition)
	if m == nil {
		return types.UnknownName
	}
	return m[1]
}
