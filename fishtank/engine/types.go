package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrBadCoordinate = errors.New("invalid coordinate")

// Coordinate addresses one cell: a row label ("A".."Z") and a 1-based column.
type Coordinate struct {
	Row string `json:"row"`
	Col int    `json:"col"`
}

func Coord(row string, col int) Coordinate { return Coordinate{Row: row, Col: col} }

// String renders the compact form used in prompts, e.g. "B3".
func (c Coordinate) String() string { return c.Row + strconv.Itoa(c.Col) }

// MarshalJSON writes the pair form ["B",3] models are asked to answer with.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%q,%d]", c.Row, c.Col)), nil
}

// UnmarshalJSON reads the pair form, the compact "B3" form, or {"row","col"}.
func (c *Coordinate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("%w: pair needs 2 items, got %d", ErrBadCoordinate, len(pair))
		}
		var row string
		if err := json.Unmarshal(pair[0], &row); err != nil {
			return fmt.Errorf("%w: row must be a string", ErrBadCoordinate)
		}
		var col int
		if err := json.Unmarshal(pair[1], &col); err != nil {
			return fmt.Errorf("%w: column must be an integer", ErrBadCoordinate)
		}
		*c = Coord(row, col)
		return nil
	}

	var compact string
	if err := json.Unmarshal(b, &compact); err == nil {
		parsed, err := ParseCoordinate(compact)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	type plain Coordinate
	var obj plain
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("%w: %s", ErrBadCoordinate, b)
	}
	*c = Coordinate(obj)
	return nil
}

// ParseCoordinate reads the compact form: exactly one row character followed
// by one column digit.
func ParseCoordinate(s string) (Coordinate, error) {
	r := []rune(s)
	if len(r) != 2 {
		return Coordinate{}, fmt.Errorf("%w: compact form %q must be two characters", ErrBadCoordinate, s)
	}
	col, err := strconv.Atoi(string(r[1]))
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: column %q is not a number", ErrBadCoordinate, string(r[1]))
	}
	return Coord(string(r[0]), col), nil
}

type Cell struct {
	RowWord string `json:"row_word"`
	ColWord string `json:"column_word"`
}

func (c Cell) String() string { return fmt.Sprintf("(%s, %s)", c.RowWord, c.ColWord) }

type Reveal struct {
	Clue    string `json:"clue"`
	Correct bool   `json:"correct"`
}

// HistoryEntry is one finished round.
type HistoryEntry struct {
	ClueGiver string     `json:"clue_giver"`
	Clue      string     `json:"clue"`
	Target    Coordinate `json:"target"`
	Guess     Coordinate `json:"guess"`
}

func (h HistoryEntry) Correct() bool { return h.Target == h.Guess }
