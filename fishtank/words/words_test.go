package words

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d := Default()
	require.NotEmpty(t, d)
	seen := map[string]bool{}
	for _, w := range d {
		assert.NotContains(t, w, " ")
		assert.False(t, seen[w], "duplicate word %q", w)
		seen[w] = true
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\n\n  beta  \r\ngamma\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestLoad_DropsRepeats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\n alpha\ngamma\nbeta\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/words.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read wordlist")

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0o644))
	_, err = Load(empty)
	assert.Error(t, err)
}

func TestSample_WithoutReplacement(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	list := []string{"a", "b", "c", "d", "e", "f"}
	got, err := Sample(r, list, len(list))
	require.NoError(t, err)
	assert.ElementsMatch(t, list, got)
}

func TestSample_Deterministic(t *testing.T) {
	a, err := Sample(rand.New(rand.NewSource(42)), Default(), 5)
	require.NoError(t, err)
	b, err := Sample(rand.New(rand.NewSource(42)), Default(), 5)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSample_Short(t *testing.T) {
	_, err := Sample(rand.New(rand.NewSource(1)), []string{"a", "b"}, 3)
	assert.ErrorIs(t, err, ErrShortWordlist)
}

func TestAxes(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	rows, cols, err := Axes(r, []string{"a", "b", "c"}, 3, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Len(t, cols, 2)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, rows)

	_, _, err = Axes(r, []string{"a", "b"}, 1, 3)
	assert.ErrorIs(t, err, ErrShortWordlist)
}

func TestAxes_NoRepeatOnAnAxis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\na\na\nb\nb\nc\n"), 0o644))
	list, err := Load(path)
	require.NoError(t, err)

	for seed := int64(0); seed < 20; seed++ {
		rows, cols, err := Axes(rand.New(rand.NewSource(seed)), list, 3, 3)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, rows)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, cols)
	}

	_, _, err = Axes(rand.New(rand.NewSource(1)), list, 4, 1)
	assert.ErrorIs(t, err, ErrShortWordlist)
}
