package patch

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const escapeChain = `return text.replace(/&/g, '&amp;').replace(/</g, '&lt;').replace(/>/g, '&gt;');`

func TestRuleApply(t *testing.T) {
	for _, tt := range []struct {
		Name  string
		In    string
		Out   string
		Count int
	}{
		{
			Name:  "one occurrence",
			In:    "function escapeText(text) {\n  " + escapeChain + "\n}\n",
			Out:   "function escapeText(text) {\n  return text;\n}\n",
			Count: 1,
		},
		{
			Name:  "no occurrence",
			In:    "function escapeText(text) {\n  return text;\n}\n",
			Out:   "function escapeText(text) {\n  return text;\n}\n",
			Count: 0,
		},
		{
			Name:  "two occurrences",
			In:    escapeChain + "\n" + escapeChain + "\n",
			Out:   "return text;\nreturn text;\n",
			Count: 2,
		},
		{
			Name:  "surrounding text survives byte for byte",
			In:    "const héllo = 1; " + escapeChain + " // trailing",
			Out:   "const héllo = 1; return text; // trailing",
			Count: 1,
		},
		{
			Name:  "empty content",
			In:    "",
			Out:   "",
			Count: 0,
		},
		{
			Name:  "partial chain is left alone",
			In:    `return text.replace(/&/g, '&amp;');`,
			Out:   `return text.replace(/&/g, '&amp;');`,
			Count: 0,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			out, count := EscapeChain.Apply([]byte(tt.In))
			assert.Equal(t, tt.Out, string(out))
			assert.Equal(t, tt.Count, count)
		})
	}

	t.Run("applying twice changes nothing more", func(t *testing.T) {
		once, count := EscapeChain.Apply([]byte(escapeChain + "\n"))
		require.Equal(t, 1, count)
		twice, again := EscapeChain.Apply(once)
		assert.Zero(t, again)
		assert.Equal(t, string(once), string(twice))
	})
}

func TestRuleOccurrences(t *testing.T) {
	content := "line one\n" + escapeChain + "\nline three\n" + escapeChain + "\n"
	assert.Equal(t, []int{2, 4}, EscapeChain.Occurrences([]byte(content)))
	assert.Empty(t, EscapeChain.Occurrences([]byte("nothing here\n")))
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "Reports.js"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("invalid encoding", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "Reports.js")
		require.NoError(t, os.WriteFile(target, []byte{0xff, 0xfe, 'h', 'i'}, 0o644))
		_, err := Load(target)
		assert.ErrorIs(t, err, ErrNotUTF8)
	})
	t.Run("valid file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "Reports.js")
		require.NoError(t, os.WriteFile(target, []byte("let text = 'héllo';\n"), 0o644))
		content, err := Load(target)
		require.NoError(t, err)
		assert.Equal(t, "let text = 'héllo';\n", string(content))
	})
}

func TestFile(t *testing.T) {
	t.Run("rewrites in place", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "Reports.js")
		require.NoError(t, os.WriteFile(target, []byte("{\n"+escapeChain+"\n}\n"), 0o644))
		outcome, err := File(target, EscapeChain)
		require.NoError(t, err)
		assert.Equal(t, target, outcome.Path)
		assert.Equal(t, 1, outcome.Replacements)
		assert.True(t, outcome.Changed)
		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "{\nreturn text;\n}\n", string(content))
	})
	t.Run("clean file is rewritten with identical bytes", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "Reports.js")
		original := "export default function Reports() {}\n"
		require.NoError(t, os.WriteFile(target, []byte(original), 0o644))
		outcome, err := File(target, EscapeChain)
		require.NoError(t, err)
		assert.Zero(t, outcome.Replacements)
		assert.False(t, outcome.Changed)
		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, original, string(content))
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := File(filepath.Join(t.TempDir(), "Reports.js"), EscapeChain)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("invalid encoding leaves the file alone", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "Reports.js")
		require.NoError(t, os.WriteFile(target, []byte{0xff, 0xfe}, 0o644))
		_, err := File(target, EscapeChain)
		assert.ErrorIs(t, err, ErrNotUTF8)
		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff, 0xfe}, content)
	})
	t.Run("permissions survive the rewrite", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("file modes are not comparable on windows")
		}
		target := filepath.Join(t.TempDir(), "Reports.js")
		require.NoError(t, os.WriteFile(target, []byte(escapeChain+"\n"), 0o600))
		_, err := File(target, EscapeChain)
		require.NoError(t, err)
		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})
}

func TestScan(t *testing.T) {
	target := filepath.Join(t.TempDir(), "Reports.js")
	require.NoError(t, os.WriteFile(target, []byte("a\nb\n"+escapeChain+"\n"), 0o644))
	lines, err := Scan(target, EscapeChain)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, lines)

	require.NoError(t, os.WriteFile(target, []byte("a\nb\n"), 0o644))
	lines, err = Scan(target, EscapeChain)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
