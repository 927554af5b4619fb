package agent

import (
	"errors"
	"strings"
)

var ErrNoClue = errors.New("completion contained no clue word")

// ExtractClue keeps the last whitespace-separated token of a clue-giver
// completion, minus trailing periods. No check that it is a real word.
func ExtractClue(completion string) (string, error) {
	fields := strings.Fields(completion)
	if len(fields) == 0 {
		return "", ErrNoClue
	}
	clue := strings.TrimRight(fields[len(fields)-1], ".")
	if clue == "" {
		return "", ErrNoClue
	}
	return clue, nil
}
