package crossclues

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/libklein/llm-fishtank/fishtank/agent"
	"github.com/libklein/llm-fishtank/fishtank/engine"
)

const (
	DefaultMaxTurns            = 12
	DefaultConsensusVotes      = 4
	DefaultConsensusConfidence = 7.0
)

var (
	// ErrNoConsensus means no turn in the round produced a parseable vote.
	ErrNoConsensus = errors.New("no consensus: every discussion turn failed to produce a vote")
	ErrNoPersonas  = errors.New("at least one persona is required")
)

// Completer is the text-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type Reason string

const (
	ReasonConsensus     Reason = "consensus"
	ReasonConfidenceSum Reason = "confidence_sum"
)

// Resolution is the outcome of one round's discussion.
type Resolution struct {
	Guess  engine.Coordinate   `json:"guess"`
	Reason Reason              `json:"reason"`
	Turns  int                 `json:"turns"`
	Votes  int                 `json:"votes"`
	Tally  []engine.TallyEntry `json:"tally"`
}

// RoundInput is everything the discussion prompt is built from.
type RoundInput struct {
	ClueGiver string
	Clue      string
	Personas  []string
	Board     agent.Board
}

// Resolver runs the discussion: up to MaxTurns sampled personas vote, stopping
// early once one coordinate has ConsensusVotes votes with mean confidence of at
// least ConsensusConfidence. Otherwise the largest confidence total wins.
type Resolver struct {
	Completer           Completer
	Prompts             agent.Prompts
	Rand                *rand.Rand
	MaxTurns            int
	ConsensusVotes      int
	ConsensusConfidence float64
	Observer            Observer
}

func NewResolver(c Completer, p agent.Prompts, r *rand.Rand) *Resolver {
	return &Resolver{
		Completer:           c,
		Prompts:             p,
		Rand:                r,
		MaxTurns:            DefaultMaxTurns,
		ConsensusVotes:      DefaultConsensusVotes,
		ConsensusConfidence: DefaultConsensusConfidence,
		Observer:            NopObserver{},
	}
}

func (rs *Resolver) Resolve(ctx context.Context, in RoundInput) (Resolution, error) {
	if len(in.Personas) == 0 {
		return Resolution{}, ErrNoPersonas
	}
	obs := rs.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	tally := engine.NewVoteTally()
	votes := 0
	for turn := 1; turn <= rs.MaxTurns; turn++ {
		// personas are drawn with replacement; the clue-giver may vote too
		persona := in.Personas[rs.Rand.Intn(len(in.Personas))]
		prompt := rs.Prompts.DiscussionPrompt(persona, in.Clue, in.ClueGiver, in.Board)

		raw, err := rs.Completer.Complete(ctx, prompt)
		if err != nil {
			return Resolution{}, fmt.Errorf("discussion turn %d (%s): %w", turn, persona, err)
		}
		vote, err := agent.ParseVote(raw)
		if err != nil {
			obs.VoteDiscarded(turn, persona, err)
			continue
		}

		votes++
		tally.Add(vote.Guess, vote.Score)
		obs.VoteCast(turn, persona, vote)

		leader, count, _ := tally.Leader()
		if count >= rs.ConsensusVotes && tally.MeanScore(leader) >= rs.ConsensusConfidence {
			return Resolution{
				Guess:  leader,
				Reason: ReasonConsensus,
				Turns:  turn,
				Votes:  votes,
				Tally:  tally.Entries(),
			}, nil
		}
	}

	best, ok := tally.BestBySum()
	if !ok {
		return Resolution{}, fmt.Errorf("%w (clue %q, %d turns)", ErrNoConsensus, in.Clue, rs.MaxTurns)
	}
	return Resolution{
		Guess:  best,
		Reason: ReasonConfidenceSum,
		Turns:  rs.MaxTurns,
		Votes:  votes,
		Tally:  tally.Entries(),
	}, nil
}
