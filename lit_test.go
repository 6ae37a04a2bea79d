package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLit(t *testing.T) {
	for _, tt := range []struct {
		lit   Lit
		v     int
		sign  int
		index int
	}{
		{Lit(1), 1, 1, 3},
		{Lit(-1), 1, 0, 2},
		{Lit(7), 7, 1, 15},
		{Lit(-7), 7, 0, 14},
	} {
		assert.Equal(t, tt.v, tt.lit.Var())
		assert.Equal(t, tt.sign, tt.lit.Sign())
		assert.Equal(t, tt.index, tt.lit.Index())
		assert.Equal(t, tt.lit, tt.lit.Neg().Neg())
		assert.Equal(t, tt.lit, litFromIndex(tt.lit.Index()))
	}
}

func TestMkLit(t *testing.T) {
	assert.Equal(t, Lit(3), MkLit(3, true))
	assert.Equal(t, Lit(-3), MkLit(3, false))
}
