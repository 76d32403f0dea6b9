// Package patch applies the fixed rewrite that removes HTML escaping from
// the admin Reports page before its text reaches the PDF renderer.
package patch

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

// ErrNotUTF8 reports that the target does not decode as UTF-8.
var ErrNotUTF8 = errors.New("content is not valid UTF-8")

// An Outcome describes a completed rewrite.
type Outcome struct {
	Path         string
	Replacements int
	Changed      bool
}

// Load reads the whole file at path and verifies it decodes as UTF-8.
func Load(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("failed to decode %s: %w", path, ErrNotUTF8)
	}
	return content, nil
}

// File rewrites the file at path in place. It reads the content once,
// applies rule to all of it, and writes the result back with the file's
// existing permissions. The write happens even when nothing matched, so a
// clean file is overwritten with identical bytes. Any failure before the
// write leaves the target as it was.
func File(path string, rule Rule) (Outcome, error) {
	content, err := Load(path)
	if err != nil {
		return Outcome{}, err
	}
	replaced, count := rule.Apply(content)
	info, err := os.Stat(path)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, replaced, info.Mode()); err != nil {
		return Outcome{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return Outcome{Path: path, Replacements: count, Changed: count > 0}, nil
}

// Scan reads the file at path and returns the 1-based line numbers where
// rule matches. It never writes.
func Scan(path string, rule Rule) ([]int, error) {
	content, err := Load(path)
	if err != nil {
		return nil, err
	}
	return rule.Occurrences(content), nil
}
