package parser

import "strings"

// LineRange converts the byte offsets of a match into 1-based inclusive
// line numbers. startLine is the number of newlines before start plus one;
// endLine is computed the same way from end. Pure function, O(end) per
// call, which is fine at source-file sizes.
func LineRange(code string, start, end int) (startLine, endLine int) {
	startLine = strings.Count(code[:start], "\n") + 1
	endLine = strings.Count(code[:end], "\n") + 1
	return startLine, endLine
}
