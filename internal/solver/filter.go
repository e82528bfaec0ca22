// internal/solver/filter.go
//
// Candidate filtering.
//
// ComputeMask tests every code of the space against the whole history:
// O(population × turns × length) feedback evaluations. For the default 8^4
// space that is 4096 codes per turn; it grows with alphabet^length, which is
// why code.MaxPopulation caps the space.
//
// Refine narrows an existing mask by one more turn and produces exactly the
// mask ComputeMask would return for the extended history.
package solver

import (
	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/history"
)

// ComputeMask marks every code of s that is consistent with h.
func ComputeMask(s code.Space, h *history.History) *Mask {
	m := NewMask(s.Population())
	for idx, c := range s.All() {
		if h.Consistent(c) {
			m.Set(idx)
		}
	}
	return m
}

// Refine returns a copy of m without the codes that t rules out.
func Refine(s code.Space, m *Mask, t history.Turn) *Mask {
	out := m.Clone()
	for idx := range m.Indices() {
		if !t.Admits(s.FromOrdinal(idx)) {
			out.Unset(idx)
		}
	}
	return out
}
