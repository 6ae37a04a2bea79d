package main

import (
	"sync/atomic"

	"github.com/k0kubun/pp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	lubyUnit       = 512 // conflicts per Luby term
	halflife       = 128 // conflicts between activity decays
	phaseThreshold = 32  // RSAT polarity-difference threshold
	guidedWindow   = 256 // learned clauses scanned per decision
)

var (
	errVerify      = errors.New("solution verification failed")
	errInterrupted = errors.New("search interrupted")
)

// Solver is the CDCL engine: clause arena, two-watched-literal propagation
// with a binary-clause fast path, 1-UIP learning, non-chronological
// backjumping, polarity-split activity with halving decay, phase saving, and
// Luby restarts. One instance owns all state; a run is single-threaded.
type Solver struct {
	arena   *ClauseArena
	watches *Watches
	binImps *BinImps

	numVars int
	vars    []VarData // 1..numVars
	units   []Lit     // original unit clauses, kept for the verifier

	trail        []Lit
	currentLevel int32

	order      *VarOrder
	nextClause int // cursor into the learned list for clause-guided decisions

	aLevel      int32 // assertion level of the last learned clause
	lastLearned ClauseRef

	luby        *Luby
	nextRestart uint64
	nextDecay   uint64

	learnt    []Lit // scratch: learned-clause buffer
	conflict  []Lit // scratch: literals of the conflicting clause
	clearList []int // scratch: marked variables to unmark

	stats *Statistics
	stop  atomic.Bool
	log   logrus.FieldLogger
}

// NewSolver consumes the parsed CNF and performs the pre-search bootstrap.
// Afterwards currentLevel is 0 (unsatisfiable by unit propagation alone) or
// 1 with units and pure literals asserted.
func NewSolver(cnf *Cnf) *Solver {
	s := &Solver{
		arena:   NewClauseArena(),
		watches: NewWatches(cnf.Vars),
		binImps: NewBinImps(cnf.Vars),
		numVars: cnf.Vars,
		vars:    make([]VarData, cnf.Vars+1),
		luby:    NewLuby(),
		stats:   NewStatistics(),
		log:     logrus.StandardLogger(),
	}
	for v := range s.vars {
		s.vars[v].ante = AnteNone
	}

	hasEmpty := false
	seen := make(map[Lit]bool)
	for _, raw := range cnf.Clauses {
		lits, tautology := normalizeClause(raw, seen)
		if tautology {
			continue
		}
		for _, l := range lits {
			s.vars[l.Var()].act[l.Sign()]++
		}
		s.stats.NumClauses++
		switch len(lits) {
		case 0:
			hasEmpty = true
		case 1:
			s.units = append(s.units, lits[0])
		case 2:
			s.binImps.AddBinary(lits[0], lits[1])
		default:
			ref := s.arena.Alloc(lits, false)
			s.watches.Append(lits[0], ref)
			s.watches.Append(lits[1], ref)
		}
	}
	s.arena.MarkOrigEnd()

	s.nextRestart = s.luby.Next() * lubyUnit
	s.nextDecay = halflife
	s.nextClause = -1

	// Unit clauses at level 0; a conflict here is definitive.
	s.currentLevel = 0
	if hasEmpty {
		return s
	}
	for _, u := range s.units {
		if s.isSet(u) {
			continue
		}
		if s.isResolved(u) || !s.assertLiteral(u, AnteNone) {
			return s
		}
	}
	s.currentLevel = 1

	// Pure literals: activity still equals occurrence count here, so a zero
	// counter means the polarity never occurs. No antecedent, as opposed to
	// an implying clause.
	for v := 1; v <= s.numVars; v++ {
		vd := &s.vars[v]
		if vd.assigned {
			continue
		}
		if vd.act[1] == 0 && vd.act[0] > 0 {
			s.assertLiteral(MkLit(v, false), AnteNone)
		} else if vd.act[0] == 0 && vd.act[1] > 0 {
			s.assertLiteral(MkLit(v, true), AnteNone)
		}
	}

	s.order = NewVarOrder(s.numVars)
	for v := 1; v <= s.numVars; v++ {
		vd := &s.vars[v]
		if !vd.assigned && s.score(v) > 0 {
			s.order.Add(v)
			vd.phase = vd.act[1] > vd.act[0]
		}
	}
	s.order.Sort(s.score)

	s.log.WithFields(logrus.Fields{
		"vars":     s.numVars,
		"clauses":  s.stats.NumClauses,
		"units":    len(s.units),
		"binaries": s.binImps.Count(),
		"assigned": len(s.trail),
	}).Debug("bootstrap complete")
	return s
}

// normalizeClause drops duplicate literals (order-preserving) and flags
// tautologies. The scratch map is cleared between clauses.
func normalizeClause(raw []Lit, seen map[Lit]bool) ([]Lit, bool) {
	lits := make([]Lit, 0, len(raw))
	for _, l := range raw {
		if seen[l.Neg()] {
			for _, m := range lits {
				delete(seen, m)
			}
			return nil, true
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		lits = append(lits, l)
	}
	for _, l := range lits {
		delete(seen, l)
	}
	return lits, false
}

func (s *Solver) isFree(l Lit) bool {
	return !s.vars[l.Var()].assigned
}

func (s *Solver) isSet(l Lit) bool {
	vd := &s.vars[l.Var()]
	return vd.assigned && vd.value == (l > 0)
}

func (s *Solver) isResolved(l Lit) bool {
	vd := &s.vars[l.Var()]
	return vd.assigned && vd.value != (l > 0)
}

func (s *Solver) score(v int) uint32 {
	return s.vars[v].act[0] + s.vars[v].act[1]
}

// setLiteral records the assignment and pushes it on the trail. It does not
// propagate.
func (s *Solver) setLiteral(l Lit, ante Antecedent) {
	vd := &s.vars[l.Var()]
	vd.assigned = true
	vd.value = l > 0
	vd.level = s.currentLevel
	vd.ante = ante
	s.trail = append(s.trail, l)
}

// assertLiteral sets l and runs unit propagation over the new trail suffix.
// Returns false on conflict, with the offending clause already analyzed
// (unless the conflict is at level 0, which is terminal).
func (s *Solver) assertLiteral(l Lit, ante Antecedent) bool {
	head := len(s.trail)
	s.setLiteral(l, ante)
	for head < len(s.trail) {
		p := s.trail[head]
		head++
		s.stats.PropagationCount++
		cause := p.Neg() // the literal that just became false

		// Binary fast path.
		for _, m := range s.binImps.Lookup(cause) {
			if s.isSet(m) {
				continue
			}
			if s.isFree(m) {
				s.setLiteral(m, AnteBinary(cause))
				continue
			}
			s.conflict = append(s.conflict[:0], cause, m)
			s.onConflict()
			return false
		}

		// Watched clauses.
		ws := s.watches.Lookup(cause)
		refs := *ws
		kept := refs[:0]
		for i := 0; i < len(refs); i++ {
			ref := refs[i]
			cl := s.arena.Run(ref)

			// Keep the falsified watch in the second slot.
			if cl[0] == cause {
				cl[0], cl[1] = cl[1], cl[0]
			}

			// Look for a replacement watch.
			moved := false
			for j := 2; cl[j] != 0; j++ {
				if !s.isResolved(cl[j]) {
					cl[1], cl[j] = cl[j], cl[1]
					s.watches.Append(cl[1], ref)
					moved = true
					break
				}
			}
			if moved {
				continue
			}

			// No replacement: satisfied, unit, or conflicting on cl[0].
			kept = append(kept, ref)
			first := cl[0]
			if s.isSet(first) {
				continue
			}
			if s.isFree(first) {
				s.setLiteral(first, AnteClause(ref))
				continue
			}
			kept = append(kept, refs[i+1:]...)
			*ws = kept
			s.copyConflict(cl)
			s.onConflict()
			return false
		}
		*ws = kept
	}
	return true
}

func (s *Solver) copyConflict(cl []Lit) {
	s.conflict = s.conflict[:0]
	for j := 0; cl[j] != 0; j++ {
		s.conflict = append(s.conflict, cl[j])
	}
}

func (s *Solver) onConflict() {
	if s.currentLevel == 0 {
		return
	}
	s.analyze()
}

// decide opens a new decision level and asserts l.
func (s *Solver) decide(l Lit) bool {
	s.stats.DecisionCount++
	s.currentLevel++
	return s.assertLiteral(l, AnteNone)
}

// analyze derives the 1-UIP learned clause from s.conflict, stores it in the
// arena with its watches, and computes the assertion level. Every literal
// touched has its polarity activity bumped, which is the whole of the VSIDS
// update.
func (s *Solver) analyze() {
	s.stats.ConflictCount++

	// A conflict at level 1 is a contradiction among consequences of the
	// formula alone: the instance is unsatisfiable. Run reads aLevel 0 as
	// that verdict.
	if s.currentLevel == 1 {
		s.aLevel = 0
		return
	}

	level := s.currentLevel
	s.learnt = s.learnt[:0]
	s.clearList = s.clearList[:0]
	pending := 0

	visit := func(q Lit) {
		vd := &s.vars[q.Var()]
		if vd.mark || vd.level == 0 {
			return
		}
		vd.mark = true
		s.clearList = append(s.clearList, q.Var())
		vd.act[q.Sign()]++
		if vd.level == level {
			pending++
		} else {
			s.learnt = append(s.learnt, q)
		}
	}
	for _, q := range s.conflict {
		visit(q)
	}

	var asserting Lit
	idx := len(s.trail) - 1
	for {
		for !s.vars[s.trail[idx].Var()].mark {
			idx--
		}
		p := s.trail[idx]
		idx--
		if pending == 1 {
			asserting = p.Neg()
			break
		}
		ante := s.vars[p.Var()].ante
		switch {
		case ante.IsBinary():
			visit(ante.Other())
		case !ante.IsNone():
			cl := s.arena.Run(ante.Clause())
			for j := 0; cl[j] != 0; j++ {
				visit(cl[j])
			}
		default:
			pp.Println(p, s.vars[p.Var()], s.currentLevel, pending)
			panic("conflict analysis reached a literal with no antecedent")
		}
		pending--
	}

	// Prepend the asserting literal.
	s.learnt = append(s.learnt, 0)
	copy(s.learnt[1:], s.learnt)
	s.learnt[0] = asserting

	if len(s.learnt) == 1 {
		s.aLevel = 1
	} else {
		// The literal at the assertion level becomes the second watch.
		maxIdx := 1
		for i := 2; i < len(s.learnt); i++ {
			if s.vars[s.learnt[i].Var()].level > s.vars[s.learnt[maxIdx].Var()].level {
				maxIdx = i
			}
		}
		s.learnt[1], s.learnt[maxIdx] = s.learnt[maxIdx], s.learnt[1]
		s.aLevel = s.vars[s.learnt[1].Var()].level
	}

	ref := s.arena.Alloc(s.learnt, true)
	if len(s.learnt) >= 2 {
		s.watches.Append(s.learnt[0], ref)
		s.watches.Append(s.learnt[1], ref)
	}
	s.lastLearned = ref
	s.stats.NumLearnts++

	for _, v := range s.clearList {
		s.vars[v].mark = false
	}
}

// assertCL asserts the literal implied by the last learned clause.
func (s *Solver) assertCL() bool {
	cl := s.arena.Run(s.lastLearned)
	return s.assertLiteral(cl[0], AnteClause(s.lastLearned))
}

// backtrack undoes all assignments above level. Phases are saved only for
// variables set below the pre-call decision level, so a decision keeps its
// previously saved phase across the jump.
func (s *Solver) backtrack(level int32) {
	for len(s.trail) > 0 {
		vd := &s.vars[s.trail[len(s.trail)-1].Var()]
		if vd.level <= level {
			break
		}
		if vd.level < s.currentLevel {
			vd.phase = vd.value
		}
		vd.assigned = false
		s.order.Rewind(s.trail[len(s.trail)-1].Var())
		s.trail = s.trail[:len(s.trail)-1]
	}
	s.currentLevel = level
}

// scoreDecay halves every activity counter. The integer halving may perturb
// relative rank; the order vector is left as is.
func (s *Solver) scoreDecay() {
	for v := 1; v <= s.numVars; v++ {
		s.vars[v].act[0] >>= 1
		s.vars[v].act[1] >>= 1
	}
}

// choosePhase applies RSAT phase selection: polarity by activity difference
// when decisive, saved phase otherwise.
func (s *Solver) choosePhase(v int) Lit {
	vd := &s.vars[v]
	d := int(vd.act[1]) - int(vd.act[0])
	if d > phaseThreshold {
		return MkLit(v, true)
	}
	if -d > phaseThreshold {
		return MkLit(v, false)
	}
	return MkLit(v, vd.phase)
}

// selectLiteral picks the next decision: the best free variable of an
// unsatisfied recent learned clause when one exists within the scan window,
// otherwise the first free variable in the static order. Returns 0 when a
// complete model exists.
func (s *Solver) selectLiteral() Lit {
	learned := s.arena.Learned()
	last := 0
	if s.nextClause > guidedWindow {
		last = s.nextClause - guidedWindow
	}
	for i := s.nextClause; i >= last; i-- {
		s.nextClause = i
		cl := s.arena.Run(learned[i])

		sat := false
		for j := 0; cl[j] != 0; j++ {
			if s.isSet(cl[j]) {
				sat = true
				break
			}
		}
		if sat {
			continue
		}

		best, bestScore := 0, -1
		for j := 0; cl[j] != 0; j++ {
			if v := cl[j].Var(); s.isFree(cl[j]) && int(s.score(v)) > bestScore {
				best, bestScore = v, int(s.score(v))
			}
		}
		return s.choosePhase(best)
	}

	if v := s.order.NextFree(func(v int) bool { return !s.vars[v].assigned }); v != 0 {
		return s.choosePhase(v)
	}
	return 0
}

// Run drives the search loop. It returns true on a verified satisfying
// assignment and false on unsatisfiability; errVerify reports a model the
// verifier rejected, errInterrupted a cooperative stop.
func (s *Solver) Run() (bool, error) {
	if s.currentLevel == 0 {
		return false, nil
	}
	for lit := s.selectLiteral(); lit != 0; lit = s.selectLiteral() {
		if s.stop.Load() {
			return false, errInterrupted
		}
		if !s.decide(lit) {
			for {
				// All non-asserting literals of the learned clause at level
				// 0: the conflict stands under unit propagation alone.
				if s.aLevel == 0 {
					return false, nil
				}

				if s.stats.ConflictCount == s.nextDecay {
					s.nextDecay += halflife
					s.scoreDecay()
				}

				// Rewind the clause-guided cursor to the newest conflict.
				s.nextClause = len(s.arena.Learned()) - 1

				if s.stats.ConflictCount == s.nextRestart {
					s.stats.RestartCount++
					s.nextRestart += s.luby.Next() * lubyUnit
					s.log.WithFields(logrus.Fields{
						"restarts":  s.stats.RestartCount,
						"conflicts": s.stats.ConflictCount,
						"decisions": s.stats.DecisionCount,
					}).Debug("restart")
					s.backtrack(1)
					// The restart jumped past the assertion level; leave the
					// learned literal for a later decision round.
					if s.currentLevel != s.aLevel {
						break
					}
				} else {
					s.backtrack(s.aLevel)
				}
				if s.assertCL() {
					break
				}
			}
		}
	}
	if !s.Verify() {
		return false, errVerify
	}
	return true, nil
}

// Interrupt requests a cooperative stop; Run notices it between decisions.
func (s *Solver) Interrupt() {
	s.stop.Store(true)
}

// Verify re-checks every original clause against the final assignment: the
// arena's original segment, the recorded unit clauses, and the binary
// implication lists.
func (s *Solver) Verify() bool {
	ok := s.arena.EachOriginal(func(cl []Lit) bool {
		for j := 0; cl[j] != 0; j++ {
			if s.isSet(cl[j]) {
				return true
			}
		}
		return false
	})
	if !ok {
		return false
	}
	for _, u := range s.units {
		if !s.isSet(u) {
			return false
		}
	}
	return s.binImps.Each(func(x, m Lit) bool {
		return s.isSet(x) || s.isSet(m)
	})
}

// Model returns the assigned literals, positive for true, in variable order.
func (s *Solver) Model() []Lit {
	model := make([]Lit, 0, len(s.trail))
	for v := 1; v <= s.numVars; v++ {
		if s.vars[v].assigned {
			model = append(model, MkLit(v, s.vars[v].value))
		}
	}
	return model
}

// Stats returns the search counters.
func (s *Solver) Stats() *Statistics {
	return s.stats
}

// NumVars returns the variable count of the input formula.
func (s *Solver) NumVars() int {
	return s.numVars
}
