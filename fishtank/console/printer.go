// Package console prints a game as it is played.
package console

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/libklein/llm-fishtank/fishtank/agent"
	"github.com/libklein/llm-fishtank/fishtank/crossclues"
	"github.com/libklein/llm-fishtank/fishtank/engine"
)

var (
	bold  = color.New(color.Bold)
	dim   = color.New(color.Faint)
	good  = color.New(color.FgGreen)
	bad   = color.New(color.FgRed, color.Bold)
	warn  = color.New(color.FgYellow)
	cyan  = color.New(color.FgCyan)
	mag   = color.New(color.FgMagenta)
	plain = color.New()
)

// SetColor turns colour on or off for the whole process. NO_COLOR always wins.
func SetColor(enabled bool) {
	color.NoColor = !enabled || os.Getenv("NO_COLOR") != ""
}

// Printer is a crossclues.Observer writing a human-readable transcript.
type Printer struct {
	out     io.Writer
	verbose bool
}

var _ crossclues.Observer = (*Printer)(nil)

func New(out io.Writer, verbose bool) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, verbose: verbose}
}

func (p *Printer) section(title string) {
	fmt.Fprintf(p.out, "\n%s %s %s\n", dim.Sprint("──"), bold.Sprint(title), dim.Sprint("──"))
}

func (p *Printer) sub(title string) {
	fmt.Fprintf(p.out, "%s %s\n", dim.Sprint("•"), bold.Sprint(title))
}

func (p *Printer) GameStarted(s crossclues.Snapshot) {
	p.section("Cross Clues")
	fmt.Fprintf(p.out, "%s %s  %s %dx%d\n", dim.Sprint("game"), s.GameID, dim.Sprint("grid"), s.Rows, s.Cols)
	fmt.Fprintln(p.out, RenderGrid(s))
}

func (p *Printer) RoundStarted(round int, clueGiver string, _ engine.Coordinate) {
	p.section(fmt.Sprintf("Round %d", round))
	fmt.Fprintf(p.out, "%s %s\n", dim.Sprint("clue-giver"), cyan.Sprint(clueGiver))
}

func (p *Printer) ClueGiven(round int, clueGiver string, target engine.Coordinate, clue string) {
	fmt.Fprintf(p.out, "[Clue-Giver %s] Coordinate %s: Clue -> %s\n",
		cyan.Sprint(clueGiver), dim.Sprint(target), bold.Sprint(clue))
}

func (p *Printer) VoteCast(turn int, persona string, v agent.StructuredVote) {
	fmt.Fprintf(p.out, "%s %s %s\n", dim.Sprintf("%2d", turn), mag.Sprintf("[%s]", persona), strings.TrimSpace(v.Message))
	fmt.Fprintf(p.out, "   Guess: %s (Confidence: %d/10)\n", bold.Sprint(v.Guess), v.Score)
}

func (p *Printer) VoteDiscarded(turn int, persona string, err error) {
	if p.verbose {
		log.Printf("[resolver] turn %d (%s) discarded: %v", turn, persona, err)
	}
}

func (p *Printer) RoundResolved(r crossclues.Round, s crossclues.Snapshot) {
	res := r.Resolution
	switch res.Reason {
	case crossclues.ReasonConsensus:
		mean := 0.0
		for _, e := range res.Tally {
			if e.Coordinate == res.Guess {
				mean = e.Mean()
			}
		}
		fmt.Fprintf(p.out, "\nConsensus reached early at %s (Avg Conf: %.1f, %d turns)\n", bold.Sprint(res.Guess), mean, res.Turns)
	default:
		fmt.Fprintf(p.out, "\nFinal Guess: %s (Highest confidence sum, %d votes in %d turns)\n", bold.Sprint(res.Guess), res.Votes, res.Turns)
	}
	if r.Correct {
		good.Fprintf(p.out, "%s Correct! %s was guessed correctly.\n", markCorrect, r.Target)
	} else {
		warn.Fprintf(p.out, "%s Incorrect. %s was the right answer.\n", markIncorrect, r.Target)
	}
	fmt.Fprintln(p.out, RenderGrid(s))
}

func (p *Printer) GameOver(res crossclues.Result) {
	p.section("Game Over")
	p.sub("Final revealed grid")
	for _, rc := range res.Revealed {
		fmt.Fprintf(p.out, "  %s: %s %s\n", rc.Coordinate, rc.Clue, Mark(rc.Correct))
	}
	s := res.Summary
	p.sub("Summary")
	acc := plain
	if s.Rounds > 0 && s.Correct*2 >= s.Rounds {
		acc = good
	} else if s.Rounds > 0 {
		acc = bad
	}
	fmt.Fprintf(p.out, "  %s %s  %s\n",
		acc.Sprintf("%d/%d correct", s.Correct, s.Rounds),
		dim.Sprintf("(%.0f%%)", 100*s.Accuracy()),
		dim.Sprintf("95%% CI [%.2f, %.2f]", s.CILow, s.CIHigh))
	if len(s.Personas) > 0 {
		fmt.Fprintln(p.out, RenderSummary(s))
	}
}

// Failure reports a game that stopped before every cell was revealed.
func (p *Printer) Failure(res crossclues.Result, err error) {
	p.section("Game Aborted")
	bad.Fprintf(p.out, "%v\n", err)
	fmt.Fprintf(p.out, "%s %d cells revealed before the error\n", dim.Sprint("•"), len(res.Revealed))
}
