package solver

import (
	"fmt"

	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/feedback"
)

// table holds every code of a space decoded once: symbol rows and per-symbol
// count rows, both contiguous and indexed by ordinal.
type table struct {
	length   int
	alphabet int
	syms     []uint8
	counts   []uint8
}

// TableBytes is the memory the code table of a solver for s occupies.
func TableBytes(s code.Space) int64 {
	return int64(s.Population()) * int64(s.Length()+s.Alphabet())
}

func newTable(s code.Space, limit int64) (*table, error) {
	if need := TableBytes(s); limit > 0 && need > limit {
		return nil, fmt.Errorf("%w: code table for %v needs %d bytes, limit %d", ErrResourceExhausted, s, need, limit)
	}
	t := &table{
		length:   s.Length(),
		alphabet: s.Alphabet(),
		syms:     make([]uint8, s.Population()*s.Length()),
		counts:   make([]uint8, s.Population()*s.Alphabet()),
	}
	for idx, c := range s.All() {
		row := t.syms[idx*t.length : (idx+1)*t.length]
		cnt := t.counts[idx*t.alphabet : (idx+1)*t.alphabet]
		for i := range row {
			row[i] = uint8(c.At(i))
			cnt[row[i]]++
		}
	}
	return t, nil
}

// score is feedback.Compute for two ordinals.
func (t *table) score(g, h int) feedback.Feedback {
	l, a := t.length, t.alphabet
	return feedback.Score(
		t.syms[g*l:(g+1)*l], t.syms[h*l:(h+1)*l],
		t.counts[g*a:(g+1)*a], t.counts[h*a:(h+1)*a],
	)
}
