package main

import (
	"fmt"
	"math"
)

const (
	arenaChunkBits = 18
	arenaChunkSize = 1 << arenaChunkBits
	arenaOffMask   = arenaChunkSize - 1
)

// ClauseRef is a stable reference to a clause in the arena, packing the chunk
// index and the offset of the clause's first literal.
type ClauseRef uint32

const ClaRefUndef ClauseRef = math.MaxUint32

// ClauseArena stores clauses as zero-terminated literal runs inside chunks
// whose backing arrays never reallocate, so a ClauseRef stays valid for the
// lifetime of the solver. Literal payloads may be swapped in place by
// propagation; clause boundaries never move and nothing is ever freed.
type ClauseArena struct {
	chunks    [][]Lit
	origChunk int
	origOff   int
	learned   []ClauseRef
}

func NewClauseArena() *ClauseArena {
	return &ClauseArena{}
}

// Alloc appends the literals as a zero-terminated run and returns a reference
// to the run. Learned clauses are additionally recorded in insertion order.
func (a *ClauseArena) Alloc(lits []Lit, learnt bool) ClauseRef {
	need := len(lits) + 1
	if need > arenaChunkSize {
		panic(fmt.Errorf("clause of %d literals exceeds the arena chunk size", len(lits)))
	}
	if len(a.chunks) == 0 || len(a.chunks[len(a.chunks)-1])+need > arenaChunkSize {
		a.chunks = append(a.chunks, make([]Lit, 0, arenaChunkSize))
	}
	ci := len(a.chunks) - 1
	chunk := a.chunks[ci]
	off := len(chunk)
	chunk = append(chunk, lits...)
	chunk = append(chunk, 0)
	a.chunks[ci] = chunk

	ref := ClauseRef(ci<<arenaChunkBits | off)
	if learnt {
		a.learned = append(a.learned, ref)
	}
	return ref
}

// Run returns the literal run starting at ref. The slice shares the arena's
// storage: the caller scans up to the zero terminator and may swap literals
// in place.
func (a *ClauseArena) Run(ref ClauseRef) []Lit {
	return a.chunks[ref>>arenaChunkBits][ref&arenaOffMask:]
}

// MarkOrigEnd freezes the end of the original-clause segment. Everything
// allocated before this point is the verifier's read set.
func (a *ClauseArena) MarkOrigEnd() {
	if len(a.chunks) == 0 {
		a.origChunk = 0
		a.origOff = 0
		return
	}
	a.origChunk = len(a.chunks) - 1
	a.origOff = len(a.chunks[a.origChunk])
}

// Learned returns the learned-clause references in insertion order.
func (a *ClauseArena) Learned() []ClauseRef {
	return a.learned
}

// EachOriginal calls f for every clause run in the original segment, stopping
// early if f returns false. Reports whether the scan ran to completion.
func (a *ClauseArena) EachOriginal(f func(cl []Lit) bool) bool {
	for ci := 0; ci <= a.origChunk && ci < len(a.chunks); ci++ {
		chunk := a.chunks[ci]
		end := len(chunk)
		if ci == a.origChunk {
			end = a.origOff
		}
		for off := 0; off < end; {
			if !f(chunk[off:]) {
				return false
			}
			for chunk[off] != 0 {
				off++
			}
			off++
		}
	}
	return true
}
