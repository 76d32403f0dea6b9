package patch

import (
	"bytes"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is how many unchanged lines stay visible on each side of a
// change when a preview collapses an equal region.
const contextLines = 2

// Preview renders a line diff between before and after. Deleted lines are
// prefixed with "- ", inserted lines with "+ ", and long unchanged regions
// collapse to a few context lines around each change. When colorize is set,
// deletions render red and insertions green. Identical inputs produce an
// empty string.
func Preview(before, after []byte, colorize bool) string {
	if bytes.Equal(before, after) {
		return ""
	}

	diffCfg := diffpatch.New()
	fromLines, toLines, lineIndex := diffCfg.DiffLinesToChars(string(before), string(after))
	diffs := diffCfg.DiffCharsToLines(diffCfg.DiffMain(fromLines, toLines, false), lineIndex)

	deleted := func(line string) string { return line }
	inserted := deleted
	if colorize {
		red := color.New(color.FgRed)
		red.EnableColor()
		green := color.New(color.FgGreen)
		green.EnableColor()
		deleted = func(line string) string { return red.Sprint(line) }
		inserted = func(line string) string { return green.Sprint(line) }
	}

	var preview strings.Builder
	for i, diff := range diffs {
		lines := splitLines(diff.Text)
		switch diff.Type {
		case diffpatch.DiffDelete:
			for _, line := range lines {
				preview.WriteString(deleted("- " + line))
				preview.WriteByte('\n')
			}
		case diffpatch.DiffInsert:
			for _, line := range lines {
				preview.WriteString(inserted("+ " + line))
				preview.WriteByte('\n')
			}
		case diffpatch.DiffEqual:
			writeContext(&preview, lines, i == 0, i == len(diffs)-1)
		}
	}
	return preview.String()
}

// writeContext emits an unchanged region, trimming it to the lines nearest
// the surrounding changes. The leading region keeps its tail, the trailing
// region keeps its head, and interior regions keep both ends.
func writeContext(preview *strings.Builder, lines []string, leading, trailing bool) {
	const elision = "...\n"
	switch {
	case leading && len(lines) > contextLines:
		preview.WriteString(elision)
		writeContextLines(preview, lines[len(lines)-contextLines:])
	case trailing && len(lines) > contextLines:
		writeContextLines(preview, lines[:contextLines])
		preview.WriteString(elision)
	case !leading && !trailing && len(lines) > 2*contextLines+1:
		writeContextLines(preview, lines[:contextLines])
		preview.WriteString(elision)
		writeContextLines(preview, lines[len(lines)-contextLines:])
	default:
		writeContextLines(preview, lines)
	}
}

func writeContextLines(preview *strings.Builder, lines []string) {
	for _, line := range lines {
		preview.WriteString("  " + line)
		preview.WriteByte('\n')
	}
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
