package console

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/libklein/llm-fishtank/fishtank/crossclues"
	"github.com/libklein/llm-fishtank/fishtank/engine"
)

const (
	markCorrect   = "✅"
	markIncorrect = "❌"
	markHidden    = "?"
)

var (
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// CellText is what a grid cell shows: the clue and a mark once revealed,
// "?" while hidden.
func CellText(s crossclues.Snapshot, c engine.Coordinate) string {
	rc, ok := s.Cell(c)
	if !ok {
		return markHidden
	}
	return rc.Clue + " " + Mark(rc.Correct)
}

func Mark(correct bool) string {
	if correct {
		return markCorrect
	}
	return markIncorrect
}

// RenderGrid draws the board with column words across the top and row words
// down the left.
func RenderGrid(s crossclues.Snapshot) string {
	headers := make([]string, 0, len(s.ColWords)+1)
	headers = append(headers, "")
	for i, w := range s.ColWords {
		headers = append(headers, fmt.Sprintf("%d: %s", i+1, w))
	}
	rows := make([][]string, 0, len(s.RowWords))
	for r, w := range s.RowWords {
		label := engine.RowLabel(r)
		row := make([]string, 0, len(s.ColWords)+1)
		row = append(row, fmt.Sprintf("%s: %s", label, w))
		for c := range s.ColWords {
			row = append(row, CellText(s, engine.Coord(label, c+1)))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}

// RenderSummary draws one line per clue-giver.
func RenderSummary(s crossclues.Summary) string {
	rows := make([][]string, 0, len(s.Personas))
	for _, p := range s.Personas {
		rows = append(rows, []string{
			p.Persona,
			fmt.Sprintf("%d", p.Clues),
			fmt.Sprintf("%d", p.Correct),
			fmt.Sprintf("%.0f%%", 100*p.Accuracy()),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("clue-giver", "clues", "correct", "accuracy").
		Rows(rows...)
	return t.Render()
}
