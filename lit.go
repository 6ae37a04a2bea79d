package main

// Lit is a literal: a signed nonzero integer whose absolute value names a
// variable and whose sign is the polarity. Zero is reserved as the clause
// terminator inside the arena.
type Lit int32

// Var returns the variable named by the literal.
func (l Lit) Var() int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

// Sign returns 1 for a positive literal and 0 for a negative one.
func (l Lit) Sign() int {
	if l > 0 {
		return 1
	}
	return 0
}

// Neg returns the literal with its polarity flipped.
func (l Lit) Neg() Lit {
	return -l
}

// Index maps the literal into the dense table index 2*var + sign, used by
// the watch lists, the binary implication lists, and the activity pairs.
func (l Lit) Index() int {
	return 2*l.Var() + l.Sign()
}

// MkLit builds a literal from a variable and a polarity.
func MkLit(v int, positive bool) Lit {
	if positive {
		return Lit(v)
	}
	return Lit(-v)
}

// litFromIndex inverts Index.
func litFromIndex(i int) Lit {
	return MkLit(i/2, i%2 == 1)
}
