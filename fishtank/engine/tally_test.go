package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteTally_Empty(t *testing.T) {
	tally := NewVoteTally()
	_, _, ok := tally.Leader()
	assert.False(t, ok)
	_, ok = tally.BestBySum()
	assert.False(t, ok)
	assert.Zero(t, tally.MeanScore(Coord("A", 1)))
}

func TestVoteTally_LeaderTieGoesToFirstVoted(t *testing.T) {
	tally := NewVoteTally()
	tally.Add(Coord("B", 1), 3)
	tally.Add(Coord("A", 2), 9)
	tally.Add(Coord("A", 2), 9)
	tally.Add(Coord("B", 1), 2)

	c, n, ok := tally.Leader()
	require.True(t, ok)
	assert.Equal(t, Coord("B", 1), c)
	assert.Equal(t, 2, n)
}

func TestVoteTally_BestBySumUsesSumNotMean(t *testing.T) {
	tally := NewVoteTally()
	tally.Add(Coord("C", 3), 10)
	tally.Add(Coord("A", 1), 6)
	tally.Add(Coord("A", 1), 6)

	c, ok := tally.BestBySum()
	require.True(t, ok)
	assert.Equal(t, Coord("A", 1), c)
	assert.Equal(t, 12, tally.ScoreSum(Coord("A", 1)))
	assert.InDelta(t, 6.0, tally.MeanScore(Coord("A", 1)), 1e-9)
}

func TestVoteTally_BestBySumTieGoesToFirstVoted(t *testing.T) {
	tally := NewVoteTally()
	tally.Add(Coord("B", 2), 8)
	tally.Add(Coord("A", 1), 8)

	c, ok := tally.BestBySum()
	require.True(t, ok)
	assert.Equal(t, Coord("B", 2), c)
}

func TestVoteTally_EntriesAreCopies(t *testing.T) {
	tally := NewVoteTally()
	tally.Add(Coord("A", 1), 5)
	entries := tally.Entries()
	entries[0].Scores[0] = 99
	assert.Equal(t, 5, tally.ScoreSum(Coord("A", 1)))
}
