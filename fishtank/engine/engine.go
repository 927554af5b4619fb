package engine

import (
	"errors"
	"fmt"
)

const MaxRows = 26

var (
	ErrEmptyAxis       = errors.New("grid needs at least one row word and one column word")
	ErrTooManyRows     = fmt.Errorf("grid supports at most %d rows", MaxRows)
	ErrAlreadyRevealed = errors.New("coordinate already revealed")
)

// RowLabel returns the label of the i-th (0-based) row.
func RowLabel(i int) string { return string(rune('A' + i)) }

// Grid maps every (row, column) pair to its two words. Immutable once built.
type Grid struct {
	rowWords []string
	colWords []string
	cells    map[Coordinate]Cell
	order    []Coordinate
}

func NewGrid(rowWords, colWords []string) (*Grid, error) {
	if len(rowWords) == 0 || len(colWords) == 0 {
		return nil, ErrEmptyAxis
	}
	if len(rowWords) > MaxRows {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyRows, len(rowWords))
	}
	g := &Grid{
		rowWords: append([]string(nil), rowWords...),
		colWords: append([]string(nil), colWords...),
		cells:    make(map[Coordinate]Cell, len(rowWords)*len(colWords)),
		order:    make([]Coordinate, 0, len(rowWords)*len(colWords)),
	}
	for r, rw := range g.rowWords {
		for c, cw := range g.colWords {
			k := Coordinate{Row: RowLabel(r), Col: c + 1}
			g.cells[k] = Cell{RowWord: rw, ColWord: cw}
			g.order = append(g.order, k)
		}
	}
	return g, nil
}

func (g *Grid) Size() int { return len(g.order) }
func (g *Grid) Rows() int { return len(g.rowWords) }
func (g *Grid) Cols() int { return len(g.colWords) }

func (g *Grid) RowWords() []string { return append([]string(nil), g.rowWords...) }
func (g *Grid) ColWords() []string { return append([]string(nil), g.colWords...) }

// Coordinates lists every cell in row-major order.
func (g *Grid) Coordinates() []Coordinate { return append([]Coordinate(nil), g.order...) }

func (g *Grid) Contains(c Coordinate) bool {
	_, ok := g.cells[c]
	return ok
}

func (g *Grid) Cell(c Coordinate) (Cell, bool) {
	cell, ok := g.cells[c]
	return cell, ok
}

// RevealState records each coordinate's outcome in reveal order.
type RevealState struct {
	byCoord map[Coordinate]Reveal
	order   []Coordinate
}

func NewRevealState() *RevealState {
	return &RevealState{byCoord: map[Coordinate]Reveal{}}
}

func (s *RevealState) Reveal(c Coordinate, r Reveal) error {
	if _, ok := s.byCoord[c]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRevealed, c)
	}
	s.byCoord[c] = r
	s.order = append(s.order, c)
	return nil
}

func (s *RevealState) Len() int { return len(s.order) }

func (s *RevealState) Has(c Coordinate) bool {
	_, ok := s.byCoord[c]
	return ok
}

func (s *RevealState) Get(c Coordinate) (Reveal, bool) {
	r, ok := s.byCoord[c]
	return r, ok
}

func (s *RevealState) Coordinates() []Coordinate { return append([]Coordinate(nil), s.order...) }

// Clues returns the revealed clue words in reveal order.
func (s *RevealState) Clues() []string {
	out := make([]string, len(s.order))
	for i, c := range s.order {
		out[i] = s.byCoord[c].Clue
	}
	return out
}

// Hidden lists the grid coordinates not yet revealed, in grid order.
func (s *RevealState) Hidden(g *Grid) []Coordinate {
	out := make([]Coordinate, 0, g.Size()-s.Len())
	for _, c := range g.order {
		if !s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}
