package words

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

//go:embed dictionary.txt
var dictionary string

var ErrShortWordlist = errors.New("wordlist is shorter than the requested sample")

// Default is the bundled dictionary.
func Default() []string { return parse(dictionary) }

// Load reads a line-delimited wordlist, skipping blank lines. Repeated words
// keep their first position.
func Load(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wordlist: %w", err)
	}
	out := parse(string(b))
	if len(out) == 0 {
		return nil, fmt.Errorf("wordlist %s has no words", path)
	}
	return out, nil
}

func parse(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(s, "\n") {
		w := strings.TrimSpace(line)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Sample draws n entries without replacement.
func Sample(r *rand.Rand, words []string, n int) ([]string, error) {
	if n < 0 || n > len(words) {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrShortWordlist, n, len(words))
	}
	out := make([]string, n)
	for i, j := range r.Perm(len(words))[:n] {
		out[i] = words[j]
	}
	return out, nil
}

// Axes samples the row and column words independently. Given a list without
// repeats, as Load and Default return, a word may appear on both axes but
// never twice on one.
func Axes(r *rand.Rand, words []string, rows, cols int) (rowWords, colWords []string, err error) {
	if rowWords, err = Sample(r, words, rows); err != nil {
		return nil, nil, fmt.Errorf("rows: %w", err)
	}
	if colWords, err = Sample(r, words, cols); err != nil {
		return nil, nil, fmt.Errorf("columns: %w", err)
	}
	return rowWords, colWords, nil
}
