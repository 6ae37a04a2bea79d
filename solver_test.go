package main

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkCnf(clauses [][]int) *Cnf {
	cnf := &Cnf{}
	for _, cl := range clauses {
		lits := make([]Lit, 0, len(cl))
		for _, v := range cl {
			l := Lit(v)
			if l.Var() > cnf.Vars {
				cnf.Vars = l.Var()
			}
			lits = append(lits, l)
		}
		cnf.Clauses = append(cnf.Clauses, lits)
	}
	return cnf
}

func solve(t *testing.T, clauses [][]int) (*Solver, bool) {
	t.Helper()
	s := NewSolver(mkCnf(clauses))
	sat, err := s.Run()
	require.NoError(t, err)
	return s, sat
}

func checkModel(t *testing.T, clauses [][]int, s *Solver) {
	t.Helper()
	vals := map[int]bool{}
	for _, l := range s.Model() {
		vals[l.Var()] = l > 0
	}
	for _, cl := range clauses {
		sat := false
		for _, v := range cl {
			l := Lit(v)
			if b, ok := vals[l.Var()]; ok && b == (l > 0) {
				sat = true
				break
			}
		}
		require.True(t, sat, "clause %v not satisfied by model %v", cl, s.Model())
	}
}

// pigeonhole encodes PHP(pigeons, holes): every pigeon in some hole, no two
// pigeons in the same hole. Unsatisfiable whenever pigeons > holes.
func pigeonhole(pigeons, holes int) [][]int {
	v := func(p, h int) int { return (p-1)*holes + h }
	var clauses [][]int
	for p := 1; p <= pigeons; p++ {
		var cl []int
		for h := 1; h <= holes; h++ {
			cl = append(cl, v(p, h))
		}
		clauses = append(clauses, cl)
	}
	for h := 1; h <= holes; h++ {
		for p := 1; p <= pigeons; p++ {
			for q := p + 1; q <= pigeons; q++ {
				clauses = append(clauses, []int{-v(p, h), -v(q, h)})
			}
		}
	}
	return clauses
}

func random3Sat(seed int64, numVars, numClauses int) [][]int {
	rng := rand.New(rand.NewSource(seed))
	clauses := make([][]int, 0, numClauses)
	for i := 0; i < numClauses; i++ {
		var vs []int
	draw:
		for len(vs) < 3 {
			v := rng.Intn(numVars) + 1
			for _, u := range vs {
				if u == v {
					continue draw
				}
			}
			vs = append(vs, v)
		}
		cl := make([]int, 3)
		for j, v := range vs {
			if rng.Intn(2) == 0 {
				v = -v
			}
			cl[j] = v
		}
		clauses = append(clauses, cl)
	}
	return clauses
}

func TestEmptyFormula(t *testing.T) {
	s, sat := solve(t, nil)
	require.True(t, sat)
	assert.Empty(t, s.Model())
}

func TestEmptyClause(t *testing.T) {
	_, sat := solve(t, [][]int{{}})
	require.False(t, sat)
}

func TestContradictoryUnits(t *testing.T) {
	_, sat := solve(t, [][]int{{1}, {-1}})
	require.False(t, sat)
}

func TestSingleUnit(t *testing.T) {
	s, sat := solve(t, [][]int{{1}})
	require.True(t, sat)
	assert.Equal(t, []Lit{1}, s.Model())
	assert.Zero(t, s.Stats().DecisionCount)
}

func TestAllPureFormula(t *testing.T) {
	clauses := [][]int{{1, 2}, {1, 3}, {2, 3}}
	s, sat := solve(t, clauses)
	require.True(t, sat)
	assert.Zero(t, s.Stats().DecisionCount)
	checkModel(t, clauses, s)
}

func TestXorUnsat(t *testing.T) {
	_, sat := solve(t, [][]int{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}})
	require.False(t, sat)
}

func TestForcedModel(t *testing.T) {
	clauses := [][]int{{1, 2, 3}, {-1}, {-2}}
	s, sat := solve(t, clauses)
	require.True(t, sat)
	require.Equal(t, []Lit{-1, -2, 3}, s.Model())
	assert.Zero(t, s.Stats().DecisionCount)
}

func TestChainUnsat(t *testing.T) {
	s, sat := solve(t, [][]int{{1, 2}, {-1, 3}, {-2, 3}, {-3}})
	require.False(t, sat)
	assert.Zero(t, s.Stats().DecisionCount)
}

func TestPigeonhole(t *testing.T) {
	for _, tt := range []struct{ pigeons, holes int }{
		{3, 2},
		{4, 3},
		{6, 5},
	} {
		t.Run(fmt.Sprintf("php_%d_%d", tt.pigeons, tt.holes), func(t *testing.T) {
			_, sat := solve(t, pigeonhole(tt.pigeons, tt.holes))
			require.False(t, sat)
		})
	}
}

func TestPigeonholeSat(t *testing.T) {
	clauses := pigeonhole(3, 3)
	s, sat := solve(t, clauses)
	require.True(t, sat)
	checkModel(t, clauses, s)
}

func TestRandom3Sat(t *testing.T) {
	numSat := 0
	for seed := int64(0); seed < 10; seed++ {
		clauses := random3Sat(seed, 50, 200)
		s, sat := solve(t, clauses)
		if sat {
			numSat++
			require.True(t, s.Verify(), "seed %d: verifier rejected the model", seed)
			checkModel(t, clauses, s)
		}
	}
	t.Logf("%d of 10 instances satisfiable", numSat)
}

func TestDeterminism(t *testing.T) {
	clauses := pigeonhole(4, 3)
	s1, sat1 := solve(t, clauses)
	s2, sat2 := solve(t, clauses)
	require.Equal(t, sat1, sat2)
	assert.Equal(t, s1.Stats(), s2.Stats())
	assert.Equal(t, s1.Model(), s2.Model())
}

func TestDeterminismRandom(t *testing.T) {
	clauses := random3Sat(7, 50, 200)
	s1, _ := solve(t, clauses)
	s2, _ := solve(t, clauses)
	assert.Equal(t, s1.Stats(), s2.Stats())
	assert.Equal(t, s1.Model(), s2.Model())
}

func TestTrailInvariants(t *testing.T) {
	clauses := random3Sat(3, 30, 100)
	s, _ := solve(t, clauses)

	onTrail := map[int]int{}
	for _, l := range s.trail {
		onTrail[l.Var()]++
	}
	for v, n := range onTrail {
		require.Equal(t, 1, n, "var %d appears %d times on the trail", v, n)
		require.True(t, s.vars[v].assigned)
	}
	for v := 1; v <= s.numVars; v++ {
		if s.vars[v].assigned {
			require.Contains(t, onTrail, v)
		}
	}
}

func TestOrderPositionBijection(t *testing.T) {
	s, _ := solve(t, random3Sat(5, 30, 100))
	for i, v := range s.order.order {
		require.Equal(t, int32(i), s.order.position[v])
	}
}

func TestNormalization(t *testing.T) {
	// Tautologies vanish, duplicate literals collapse.
	s, sat := solve(t, [][]int{{1, -1, 2}, {3, 3}})
	require.True(t, sat)
	assert.Equal(t, uint64(1), s.Stats().NumClauses)
	assert.Equal(t, []Lit{3}, s.Model())
}

func TestInterrupt(t *testing.T) {
	s := NewSolver(mkCnf([][]int{{1, 2}, {-1, 2}}))
	s.Interrupt()
	_, err := s.Run()
	require.Equal(t, errInterrupted, err)
}

func TestVerifyRejectsBadAssignment(t *testing.T) {
	s := NewSolver(mkCnf([][]int{{1, 2, 3}, {-1, -2, -3}}))
	for v := 1; v <= 3; v++ {
		s.vars[v].assigned = true
		s.vars[v].value = false
	}
	require.False(t, s.Verify())

	s.vars[1].value = true
	require.True(t, s.Verify())
}
