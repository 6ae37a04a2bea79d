package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAllocAndRun(t *testing.T) {
	a := NewClauseArena()
	ref := a.Alloc([]Lit{1, -2, 3}, false)
	cl := a.Run(ref)
	assert.Equal(t, Lit(1), cl[0])
	assert.Equal(t, Lit(-2), cl[1])
	assert.Equal(t, Lit(3), cl[2])
	assert.Equal(t, Lit(0), cl[3])
}

func TestArenaLearnedList(t *testing.T) {
	a := NewClauseArena()
	a.Alloc([]Lit{1, 2, 3}, false)
	a.MarkOrigEnd()
	r1 := a.Alloc([]Lit{-1, -2}, true)
	r2 := a.Alloc([]Lit{-3}, true)
	require.Equal(t, []ClauseRef{r1, r2}, a.Learned())
}

func TestArenaEachOriginal(t *testing.T) {
	a := NewClauseArena()
	a.Alloc([]Lit{1, 2, 3}, false)
	a.Alloc([]Lit{-1, -2, 4}, false)
	a.MarkOrigEnd()
	a.Alloc([]Lit{2, 4}, true)

	var got [][]Lit
	a.EachOriginal(func(cl []Lit) bool {
		var lits []Lit
		for j := 0; cl[j] != 0; j++ {
			lits = append(lits, cl[j])
		}
		got = append(got, lits)
		return true
	})
	require.Equal(t, [][]Lit{{1, 2, 3}, {-1, -2, 4}}, got)
}

func TestArenaEachOriginalEmpty(t *testing.T) {
	a := NewClauseArena()
	a.MarkOrigEnd()
	assert.True(t, a.EachOriginal(func([]Lit) bool { return false }))
}

func TestArenaRefStabilityAcrossChunks(t *testing.T) {
	a := NewClauseArena()
	first := a.Alloc([]Lit{9, -8, 7}, false)
	// Spill into several chunks.
	for i := 0; i < 3*arenaChunkSize/4; i++ {
		a.Alloc([]Lit{1, 2, 3}, false)
	}
	cl := a.Run(first)
	require.Equal(t, []Lit{9, -8, 7, 0}, []Lit(cl[:4]))

	// Literal payloads are mutable in place through a reference.
	cl[0], cl[1] = cl[1], cl[0]
	assert.Equal(t, Lit(-8), a.Run(first)[0])
	assert.Equal(t, Lit(9), a.Run(first)[1])
}
