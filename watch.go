package main

// Watches is the two-watched-literal index: for each literal, the clauses
// currently watching it. A clause of length >= 2 in the arena is watched by
// its first two literals, and its watch list entries are visited when one of
// them becomes false.
type Watches struct {
	occs [][]ClauseRef
}

func NewWatches(numVars int) *Watches {
	return &Watches{occs: make([][]ClauseRef, 2*(numVars+1))}
}

// Lookup returns a pointer to the watch list of l so that propagation can
// compact it in place.
func (w *Watches) Lookup(l Lit) *[]ClauseRef {
	return &w.occs[l.Index()]
}

// Append adds ref to the watch list of l.
func (w *Watches) Append(l Lit, ref ClauseRef) {
	i := l.Index()
	w.occs[i] = append(w.occs[i], ref)
}

// BinImps holds the binary original clauses as implication lists: the list of
// literal x contains m for every clause (x v m), and is walked when x becomes
// false. Binary clauses live only here and are never watched.
type BinImps struct {
	imps  [][]Lit
	count int
}

func NewBinImps(numVars int) *BinImps {
	return &BinImps{imps: make([][]Lit, 2*(numVars+1))}
}

// AddBinary records the clause (a v b) in both implication lists.
func (b *BinImps) AddBinary(a, c Lit) {
	b.imps[a.Index()] = append(b.imps[a.Index()], c)
	b.imps[c.Index()] = append(b.imps[c.Index()], a)
	b.count++
}

// Lookup returns the partners forced when x is false.
func (b *BinImps) Lookup(x Lit) []Lit {
	return b.imps[x.Index()]
}

// Count returns the number of binary clauses recorded.
func (b *BinImps) Count() int {
	return b.count
}

// Each calls f with every (x, partner) pair, stopping early if f returns
// false. Every binary clause is presented twice, once from each side.
func (b *BinImps) Each(f func(x, m Lit) bool) bool {
	for i, partners := range b.imps {
		if len(partners) == 0 {
			continue
		}
		x := litFromIndex(i)
		for _, m := range partners {
			if !f(x, m) {
				return false
			}
		}
	}
	return true
}
