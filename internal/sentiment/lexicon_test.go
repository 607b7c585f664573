package sentiment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWordList(t *testing.T) {
	words, err := ReadWordList(strings.NewReader("# comment\nGood\n\n  great  \nbad\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Good", "great", "bad"}, words)
}

func TestLoadLexicon(t *testing.T) {
	dir := t.TempDir()
	pos := filepath.Join(dir, "positive.txt")
	neg := filepath.Join(dir, "negative.txt")
	require.NoError(t, os.WriteFile(pos, []byte("Amazing\nExcellent\n"), 0o644))
	require.NoError(t, os.WriteFile(neg, []byte("TERRIBLE\n"), 0o644))

	lex, err := LoadLexicon(pos, neg)
	require.NoError(t, err)

	assert.True(t, lex.IsPositive("amazing"))
	assert.True(t, lex.IsPositive("excellent"))
	assert.True(t, lex.IsNegative("terrible"))
	assert.False(t, lex.IsNegative("amazing"))

	p, n := lex.Size()
	assert.Equal(t, 2, p)
	assert.Equal(t, 1, n)
}

func TestLoadLexicon_MissingFilesDegradeToEmpty(t *testing.T) {
	dir := t.TempDir()
	neg := filepath.Join(dir, "negative.txt")
	require.NoError(t, os.WriteFile(neg, []byte("awful\n"), 0o644))

	lex, err := LoadLexicon(filepath.Join(dir, "missing.txt"), neg)
	require.Error(t, err)
	require.NotNil(t, lex)

	p, n := lex.Size()
	assert.Equal(t, 0, p)
	assert.Equal(t, 1, n)

	lex, err = LoadLexicon(filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"))
	require.Error(t, err)
	assert.True(t, lex.Empty())
	assert.Equal(t, 0.0, NewAnalyzer(lex).AnalyzeSentiment("awful amazing"))
}
