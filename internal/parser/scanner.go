package parser

import "regexp"

// definitionPattern pairs a triple-quoted docstring with the definition
// that immediately follows it. The lazy quantifiers matter: the docstring
// capture stops at the first closing """, and each definition alternative
// stops at the first following "end" rather than the last one in the file,
// so consecutive documented definitions produce separate, non-overlapping
// matches. A definition containing a nested end-terminated block is
// truncated at the inner end; see the package documentation.
var definitionPattern = regexp.MustCompile(
	`(?s)"""(.*?)"""` + // docstring body
		`\s*\n+` + // whitespace and newlines between docstring and definition
		`(function\s+.*?end` + // function ... end
		`|(?:mutable\s+)?struct\s+.*?end` + // struct or mutable struct ... end
		`|abstract\s+type\s+.*?end)`) // abstract type ... end

// Match is one docstring/definition pair found in a file's text.
// Start and End are byte offsets into the scanned text covering the whole
// match, opening docstring delimiter through the definition's closing end.
type Match struct {
	Documentation string // raw docstring capture, not yet trimmed
	Definition    string // raw definition capture, not yet trimmed
	Start         int
	End           int
}

// ScanDefinitions finds every docstring-paired definition in code. Matches
// are returned in source order and never overlap. Code with no pairs
// yields an empty slice; undocumented definitions produce no match at all.
func ScanDefinitions(code string) []Match {
	idx := definitionPattern.FindAllStringSubmatchIndex(code, -1)
	if len(idx) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(idx))
	for _, m := range idx {
		matches = append(matches, Match{
			Documentation: code[m[2]:m[3]],
			Definition:    code[m[4]:m[5]],
			Start:         m[0],
			End:           m[1],
		})
	}
	return matches
}
