package main

import "sort"

// VarOrder is the static decision order: variables sorted by seed score at
// bootstrap and never re-sorted afterwards. Search walks the vector with a
// cursor; backtracking rewinds the cursor to the lowest position of any
// variable it unassigns so higher-scoring variables get reconsidered first.
type VarOrder struct {
	order    []int32
	position []int32
	next     int
}

func NewVarOrder(numVars int) *VarOrder {
	return &VarOrder{position: make([]int32, numVars+1)}
}

// Add appends a candidate variable. Only call before Sort.
func (o *VarOrder) Add(v int) {
	o.order = append(o.order, int32(v))
}

// Sort orders the candidates by descending score and builds the position
// index, restoring position[order[i]] == i.
func (o *VarOrder) Sort(score func(v int) uint32) {
	sort.SliceStable(o.order, func(i, j int) bool {
		return score(int(o.order[i])) > score(int(o.order[j]))
	})
	for i, v := range o.order {
		o.position[v] = int32(i)
	}
	o.next = 0
}

// Rewind lowers the cursor to v's position if v sits before it.
func (o *VarOrder) Rewind(v int) {
	if p := int(o.position[v]); p < o.next {
		o.next = p
	}
}

// NextFree advances the cursor past assigned variables and returns the first
// free one, or 0 when the vector is exhausted.
func (o *VarOrder) NextFree(free func(v int) bool) int {
	for i := o.next; i < len(o.order); i++ {
		if v := int(o.order[i]); free(v) {
			o.next = i + 1
			return v
		}
	}
	return 0
}

// Len returns the number of ordered variables.
func (o *VarOrder) Len() int {
	return len(o.order)
}
