package crossclues

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/libklein/llm-fishtank/fishtank/agent"
	"github.com/libklein/llm-fishtank/fishtank/engine"
)

var ErrGameComplete = errors.New("game is already complete")

type State int

const (
	InProgress State = iota
	Complete
)

func (s State) String() string {
	if s == Complete {
		return "complete"
	}
	return "in_progress"
}

// Round is one finished clue/discussion/reveal cycle.
type Round struct {
	Number     int               `json:"number"`
	ClueGiver  string            `json:"clue_giver"`
	Target     engine.Coordinate `json:"target"`
	Clue       string            `json:"clue"`
	Resolution Resolution        `json:"resolution"`
	Correct    bool              `json:"correct"`
}

type Options struct {
	Personas  []string
	Grid      *engine.Grid
	Completer Completer
	Prompts   agent.Prompts
	Rand      *rand.Rand
	MaxTurns  int
	Observer  Observer
}

// Game owns the grid, the reveals and the history for one play-through.
type Game struct {
	ID       string
	personas []string
	grid     *engine.Grid
	reveals  *engine.RevealState
	history  []engine.HistoryEntry

	completer Completer
	prompts   agent.Prompts
	resolver  *Resolver
	rng       *rand.Rand
	observer  Observer
	started   bool
}

func NewGame(opts Options) (*Game, error) {
	if len(opts.Personas) == 0 {
		return nil, ErrNoPersonas
	}
	if opts.Grid == nil {
		return nil, errors.New("grid is required")
	}
	if opts.Completer == nil {
		return nil, errors.New("completer is required")
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	resolver := NewResolver(opts.Completer, opts.Prompts, rng)
	resolver.Observer = obs
	if opts.MaxTurns > 0 {
		resolver.MaxTurns = opts.MaxTurns
	}
	return &Game{
		ID:        uuid.NewString(),
		personas:  append([]string(nil), opts.Personas...),
		grid:      opts.Grid,
		reveals:   engine.NewRevealState(),
		completer: opts.Completer,
		prompts:   opts.Prompts,
		resolver:  resolver,
		rng:       rng,
		observer:  obs,
	}, nil
}

func (g *Game) State() State {
	if g.reveals.Len() >= g.grid.Size() {
		return Complete
	}
	return InProgress
}

func (g *Game) board() agent.Board {
	return agent.Board{Grid: g.grid, Reveals: g.reveals, History: g.history}
}

// Step plays one round: pick a clue-giver and a hidden target, get the clue,
// let the table discuss, and reveal the target.
func (g *Game) Step(ctx context.Context) (Round, error) {
	if g.State() == Complete {
		return Round{}, ErrGameComplete
	}
	number := len(g.history) + 1
	giver := g.personas[g.rng.Intn(len(g.personas))]
	hidden := g.reveals.Hidden(g.grid)
	target := hidden[g.rng.Intn(len(hidden))]
	g.observer.RoundStarted(number, giver, target)

	prompt, err := g.prompts.ClueGiverPrompt(giver, target, g.board())
	if err != nil {
		return Round{}, err
	}
	completion, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		return Round{}, fmt.Errorf("round %d clue from %s: %w", number, giver, err)
	}
	clue, err := agent.ExtractClue(completion)
	if err != nil {
		return Round{}, fmt.Errorf("round %d clue from %s: %w", number, giver, err)
	}
	g.observer.ClueGiven(number, giver, target, clue)

	res, err := g.resolver.Resolve(ctx, RoundInput{
		ClueGiver: giver,
		Clue:      clue,
		Personas:  g.personas,
		Board:     g.board(),
	})
	if err != nil {
		return Round{}, fmt.Errorf("round %d: %w", number, err)
	}

	r := Round{
		Number:     number,
		ClueGiver:  giver,
		Target:     target,
		Clue:       clue,
		Resolution: res,
		Correct:    res.Guess == target,
	}
	if err := g.reveals.Reveal(target, engine.Reveal{Clue: clue, Correct: r.Correct}); err != nil {
		return Round{}, err
	}
	g.history = append(g.history, engine.HistoryEntry{
		ClueGiver: giver,
		Clue:      clue,
		Target:    target,
		Guess:     res.Guess,
	})
	g.observer.RoundResolved(r, g.Snapshot())
	return r, nil
}

// Play runs rounds until every cell is revealed. Cancellation is honoured
// between rounds and inside completion calls.
func (g *Game) Play(ctx context.Context) (Result, error) {
	if !g.started {
		g.started = true
		g.observer.GameStarted(g.Snapshot())
	}
	for g.State() == InProgress {
		if err := ctx.Err(); err != nil {
			return g.Result(), err
		}
		if _, err := g.Step(ctx); err != nil {
			return g.Result(), err
		}
	}
	res := g.Result()
	g.observer.GameOver(res)
	return res, nil
}

// RevealedCell is one entry of the reveal state, in reveal order.
type RevealedCell struct {
	Coordinate engine.Coordinate `json:"coordinate"`
	Clue       string            `json:"clue"`
	Correct    bool              `json:"correct"`
}

// Snapshot is a copy of the game state safe to hand to other goroutines.
type Snapshot struct {
	GameID   string                `json:"game_id"`
	State    string                `json:"state"`
	Rows     int                   `json:"rows"`
	Cols     int                   `json:"cols"`
	RowWords []string              `json:"row_words"`
	ColWords []string              `json:"column_words"`
	Revealed []RevealedCell        `json:"revealed"`
	History  []engine.HistoryEntry `json:"history"`
}

func (s Snapshot) Cell(c engine.Coordinate) (RevealedCell, bool) {
	for _, rc := range s.Revealed {
		if rc.Coordinate == c {
			return rc, true
		}
	}
	return RevealedCell{}, false
}

func (g *Game) revealedCells() []RevealedCell {
	coords := g.reveals.Coordinates()
	out := make([]RevealedCell, len(coords))
	for i, c := range coords {
		r, _ := g.reveals.Get(c)
		out[i] = RevealedCell{Coordinate: c, Clue: r.Clue, Correct: r.Correct}
	}
	return out
}

func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		GameID:   g.ID,
		State:    g.State().String(),
		Rows:     g.grid.Rows(),
		Cols:     g.grid.Cols(),
		RowWords: g.grid.RowWords(),
		ColWords: g.grid.ColWords(),
		Revealed: g.revealedCells(),
		History:  append([]engine.HistoryEntry(nil), g.history...),
	}
}

// Result is the final (or, after an error, partial) outcome of a game.
type Result struct {
	GameID   string                `json:"game_id"`
	Complete bool                  `json:"complete"`
	Revealed []RevealedCell        `json:"revealed"`
	History  []engine.HistoryEntry `json:"history"`
	Summary  Summary               `json:"summary"`
}

func (g *Game) Result() Result {
	return Result{
		GameID:   g.ID,
		Complete: g.State() == Complete,
		Revealed: g.revealedCells(),
		History:  append([]engine.HistoryEntry(nil), g.history...),
		Summary:  Summarize(g.history),
	}
}
