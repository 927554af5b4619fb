package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/libklein/llm-fishtank/fishtank/engine"
)

// ErrMalformedVote marks a completion that carried no usable vote. Callers drop
// the turn; it is never fatal.
var ErrMalformedVote = errors.New("malformed vote")

// StructuredVote is what one discussion turn yields:
//
//	{"message": "...", "guess": ["B", 3] | "B3", "score": 0..10}
type StructuredVote struct {
	Message string            `json:"message"`
	Guess   engine.Coordinate `json:"guess"`
	Score   int               `json:"score"`
}

// ParseVote pulls the vote out of a chatty completion. It takes the text from
// the last '{' through the last '}', so only the final object-looking span
// counts, and nested objects are not balanced.
func ParseVote(raw string) (StructuredVote, error) {
	payload, err := lastBraceSpan(raw)
	if err != nil {
		return StructuredVote{}, err
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var parsed map[string]any
	if err := dec.Decode(&parsed); err != nil {
		return StructuredVote{}, fmt.Errorf("%w: %v", ErrMalformedVote, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return StructuredVote{}, fmt.Errorf("%w: trailing data after object", ErrMalformedVote)
	}

	msg, ok := parsed["message"].(string)
	if !ok {
		return StructuredVote{}, fmt.Errorf("%w: message must be a string", ErrMalformedVote)
	}
	guess, err := coerceGuess(parsed["guess"])
	if err != nil {
		return StructuredVote{}, err
	}
	score, ok := coerceInt(parsed["score"])
	if !ok {
		return StructuredVote{}, fmt.Errorf("%w: score must be an integer, got %v", ErrMalformedVote, parsed["score"])
	}
	return StructuredVote{Message: msg, Guess: guess, Score: score}, nil
}

func lastBraceSpan(s string) (string, error) {
	start := strings.LastIndex(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < 0 {
		return "", fmt.Errorf("%w: no JSON object in response", ErrMalformedVote)
	}
	if end < start {
		return "", fmt.Errorf("%w: last '{' comes after last '}'", ErrMalformedVote)
	}
	return s[start : end+1], nil
}

func coerceGuess(v any) (engine.Coordinate, error) {
	switch t := v.(type) {
	case string:
		c, err := engine.ParseCoordinate(t)
		if err != nil {
			return engine.Coordinate{}, fmt.Errorf("%w: guess: %v", ErrMalformedVote, err)
		}
		return c, nil
	case []any:
		if len(t) != 2 {
			return engine.Coordinate{}, fmt.Errorf("%w: guess pair needs 2 items, got %d", ErrMalformedVote, len(t))
		}
		row, ok := t[0].(string)
		if !ok {
			return engine.Coordinate{}, fmt.Errorf("%w: guess row must be a string", ErrMalformedVote)
		}
		col, ok := coerceInt(t[1])
		if !ok {
			return engine.Coordinate{}, fmt.Errorf("%w: guess column must be an integer", ErrMalformedVote)
		}
		return engine.Coord(row, col), nil
	case nil:
		return engine.Coordinate{}, fmt.Errorf("%w: missing guess", ErrMalformedVote)
	default:
		return engine.Coordinate{}, fmt.Errorf("%w: unsupported guess %v", ErrMalformedVote, t)
	}
}

// coerceInt accepts integers, integral floats and numeric strings.
func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil && f == math.Trunc(f) {
			return int(f), true
		}
	case float64:
		if t == math.Trunc(t) {
			return int(t), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}
