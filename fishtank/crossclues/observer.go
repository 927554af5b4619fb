package crossclues

import (
	"github.com/libklein/llm-fishtank/fishtank/agent"
	"github.com/libklein/llm-fishtank/fishtank/engine"
)

// Observer is told about every step of a game. Calls happen on the game's
// goroutine, in order, and should return quickly.
type Observer interface {
	GameStarted(s Snapshot)
	RoundStarted(round int, clueGiver string, target engine.Coordinate)
	ClueGiven(round int, clueGiver string, target engine.Coordinate, clue string)
	VoteCast(turn int, persona string, v agent.StructuredVote)
	VoteDiscarded(turn int, persona string, err error)
	RoundResolved(r Round, s Snapshot)
	GameOver(res Result)
}

// NopObserver can be embedded to implement only some callbacks.
type NopObserver struct{}

func (NopObserver) GameStarted(Snapshot)                             {}
func (NopObserver) RoundStarted(int, string, engine.Coordinate)      {}
func (NopObserver) ClueGiven(int, string, engine.Coordinate, string) {}
func (NopObserver) VoteCast(int, string, agent.StructuredVote)       {}
func (NopObserver) VoteDiscarded(int, string, error)                 {}
func (NopObserver) RoundResolved(Round, Snapshot)                    {}
func (NopObserver) GameOver(Result)                                  {}

// Observers fans every callback out in order.
type Observers []Observer

func (o Observers) GameStarted(s Snapshot) {
	for _, x := range o {
		x.GameStarted(s)
	}
}

func (o Observers) RoundStarted(round int, clueGiver string, target engine.Coordinate) {
	for _, x := range o {
		x.RoundStarted(round, clueGiver, target)
	}
}

func (o Observers) ClueGiven(round int, clueGiver string, target engine.Coordinate, clue string) {
	for _, x := range o {
		x.ClueGiven(round, clueGiver, target, clue)
	}
}

func (o Observers) VoteCast(turn int, persona string, v agent.StructuredVote) {
	for _, x := range o {
		x.VoteCast(turn, persona, v)
	}
}

func (o Observers) VoteDiscarded(turn int, persona string, err error) {
	for _, x := range o {
		x.VoteDiscarded(turn, persona, err)
	}
}

func (o Observers) RoundResolved(r Round, s Snapshot) {
	for _, x := range o {
		x.RoundResolved(r, s)
	}
}

func (o Observers) GameOver(res Result) {
	for _, x := range o {
		x.GameOver(res)
	}
}
