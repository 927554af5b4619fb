package engine

// VoteTally accumulates one round's votes. Iteration order is first-vote order,
// which is what breaks ties in Leader and BestBySum.
type VoteTally struct {
	index   map[Coordinate]int
	entries []TallyEntry
}

type TallyEntry struct {
	Coordinate Coordinate `json:"coordinate"`
	Votes      int        `json:"votes"`
	Scores     []int      `json:"scores"`
}

func (e TallyEntry) Sum() int {
	s := 0
	for _, v := range e.Scores {
		s += v
	}
	return s
}

func (e TallyEntry) Mean() float64 {
	if len(e.Scores) == 0 {
		return 0
	}
	return float64(e.Sum()) / float64(len(e.Scores))
}

func NewVoteTally() *VoteTally {
	return &VoteTally{index: map[Coordinate]int{}}
}

func (t *VoteTally) Add(c Coordinate, score int) {
	i, ok := t.index[c]
	if !ok {
		i = len(t.entries)
		t.index[c] = i
		t.entries = append(t.entries, TallyEntry{Coordinate: c})
	}
	t.entries[i].Votes++
	t.entries[i].Scores = append(t.entries[i].Scores, score)
}

func (t *VoteTally) Len() int { return len(t.entries) }

func (t *VoteTally) Entry(c Coordinate) (TallyEntry, bool) {
	i, ok := t.index[c]
	if !ok {
		return TallyEntry{}, false
	}
	return t.entries[i], true
}

func (t *VoteTally) MeanScore(c Coordinate) float64 {
	e, _ := t.Entry(c)
	return e.Mean()
}

func (t *VoteTally) ScoreSum(c Coordinate) int {
	e, _ := t.Entry(c)
	return e.Sum()
}

// Leader is the coordinate with the most votes; the earliest-voted wins ties.
func (t *VoteTally) Leader() (Coordinate, int, bool) {
	best := -1
	for i, e := range t.entries {
		if best < 0 || e.Votes > t.entries[best].Votes {
			best = i
		}
	}
	if best < 0 {
		return Coordinate{}, 0, false
	}
	return t.entries[best].Coordinate, t.entries[best].Votes, true
}

// BestBySum is the coordinate with the largest confidence total; the
// earliest-voted wins ties.
func (t *VoteTally) BestBySum() (Coordinate, bool) {
	best := -1
	bestSum := 0
	for i, e := range t.entries {
		if s := e.Sum(); best < 0 || s > bestSum {
			best, bestSum = i, s
		}
	}
	if best < 0 {
		return Coordinate{}, false
	}
	return t.entries[best].Coordinate, true
}

// Entries returns a copy safe to hand to observers.
func (t *VoteTally) Entries() []TallyEntry {
	out := make([]TallyEntry, len(t.entries))
	for i, e := range t.entries {
		e.Scores = append([]int(nil), e.Scores...)
		out[i] = e
	}
	return out
}
