package crossclues

import (
	"math"

	"github.com/libklein/llm-fishtank/fishtank/engine"
)

type PersonaStats struct {
	Persona string `json:"persona"`
	Clues   int    `json:"clues"`
	Correct int    `json:"correct"`
}

func (p PersonaStats) Accuracy() float64 {
	if p.Clues == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Clues)
}

// Summary aggregates a game's history, per clue-giver and overall.
type Summary struct {
	Rounds   int            `json:"rounds"`
	Correct  int            `json:"correct"`
	CILow    float64        `json:"ci_low"`
	CIHigh   float64        `json:"ci_high"`
	Personas []PersonaStats `json:"personas"`
}

func (s Summary) Accuracy() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Rounds)
}

// Summarize lists personas in the order they first gave a clue.
func Summarize(history []engine.HistoryEntry) Summary {
	var s Summary
	idx := map[string]int{}
	for _, h := range history {
		i, ok := idx[h.ClueGiver]
		if !ok {
			i = len(s.Personas)
			idx[h.ClueGiver] = i
			s.Personas = append(s.Personas, PersonaStats{Persona: h.ClueGiver})
		}
		s.Rounds++
		s.Personas[i].Clues++
		if h.Correct() {
			s.Correct++
			s.Personas[i].Correct++
		}
	}
	s.CILow, s.CIHigh = WilsonCI95(s.Correct, s.Rounds)
	return s
}

// WilsonCI95 for a Bernoulli success rate.
func WilsonCI95(successes, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := float64(successes) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}
