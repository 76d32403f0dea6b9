package patch

import (
	"bytes"
	"regexp"
)

// EscapeChain matches the HTML-escaping chain the report generator stamps
// into the Reports page. The page feeds its text into a PDF renderer, and
// PDF text is not HTML, so every escaped entity shows up verbatim in the
// finished document. The fix swaps the whole chain for a bare return.
var EscapeChain = Rule{
	pattern:     regexp.MustCompile(`return text\.replace\(/&/g, '&amp;'\)\.replace\(/</g, '&lt;'\)\.replace\(/>/g, '&gt;'\);`),
	replacement: []byte("return text;"),
}

// A Rule pairs a pattern with the literal text that replaces each match.
type Rule struct {
	pattern     *regexp.Regexp
	replacement []byte
}

// Apply replaces every non-overlapping match in content and reports how
// many matches it found. The replacement is inserted verbatim, without
// expansion. With zero matches the returned content is identical to the
// input.
func (rule Rule) Apply(content []byte) ([]byte, int) {
	count := 0
	replaced := rule.pattern.ReplaceAllFunc(content, func([]byte) []byte {
		count++
		return rule.replacement
	})
	return replaced, count
}

// Occurrences returns the 1-based line number of each match in content, in
// order. A line number repeats when a single line holds multiple matches.
func (rule Rule) Occurrences(content []byte) []int {
	var lines []int
	for _, match := range rule.pattern.FindAllIndex(content, -1) {
		lines = append(lines, 1+bytes.Count(content[:match[0]], []byte("\n")))
	}
	return lines
}
