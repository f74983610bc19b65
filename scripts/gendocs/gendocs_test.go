package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "[`check`](/cli/check)")
	assert.Contains(t, string(index), "LEAPPROOF_SERVE__ADDR")

	check, err := os.ReadFile(filepath.Join(dir, "check.md"))
	require.NoError(t, err)
	assert.Contains(t, string(check), "leapproof check")
	assert.Contains(t, string(check), "`--watch`")
}

func TestGenerateRuleDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateRuleDocs(dir))

	data, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "## Rules of Replacement")
	assert.Contains(t, doc, "### Modus Ponens")
	assert.Contains(t, doc, "- `(a>b), a |- b`")
}

func TestMarkdownWriter_Table(t *testing.T) {
	w := NewMarkdownWriter()
	w.Table([]string{"Form", "Kind"}, [][]string{{"a | b", "or"}})
	assert.Equal(t, "| Form | Kind |\n|---|---|\n| a \\| b | or |\n\n", string(w.Bytes()))

	empty := NewMarkdownWriter()
	empty.Table([]string{"Form"}, nil)
	assert.Empty(t, empty.Bytes())
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "a b c", cleanDescription("  a\n\tb   c "))
	long := cleanDescription(string(make([]byte, 300)))
	assert.LessOrEqual(t, len(long), 200)
}
