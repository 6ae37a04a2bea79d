package main

import "math"

// Antecedent identifies what forced a variable: a clause in the arena, the
// other literal of a binary clause, or nothing (decisions and free initial
// assignments). Binary clauses are not materialized in the arena, so their
// antecedents carry the partner literal directly behind a tag bit.
type Antecedent uint32

const AnteNone Antecedent = math.MaxUint32

const anteBinaryFlag uint32 = 1 << 31

func AnteClause(ref ClauseRef) Antecedent {
	return Antecedent(ref)
}

func AnteBinary(other Lit) Antecedent {
	return Antecedent(anteBinaryFlag | uint32(other.Index()))
}

func (a Antecedent) IsNone() bool {
	return a == AnteNone
}

func (a Antecedent) IsBinary() bool {
	return a != AnteNone && uint32(a)&anteBinaryFlag != 0
}

// Clause returns the arena reference. Only meaningful for clause antecedents.
func (a Antecedent) Clause() ClauseRef {
	return ClauseRef(a)
}

// Other returns the partner literal of a binary antecedent.
func (a Antecedent) Other() Lit {
	return litFromIndex(int(uint32(a) &^ anteBinaryFlag))
}

// VarData is the per-variable record.
type VarData struct {
	assigned bool
	value    bool // meaningful only if assigned
	phase    bool // saved polarity for phase-saving decisions
	mark     bool // scratch bit, conflict analysis only
	level    int32
	ante     Antecedent
	act      [2]uint32 // polarity-split activity; act[0] negative, act[1] positive
}
