// internal/feedback/feedback.go
//
// Feedback scoring for a guess against a hidden code.
//
//   - Fit:       positions where both codes hold the same symbol.
//   - Misplaced: further symbol matches when position is ignored.
//
// The sum Fit+Misplaced equals the cardinality of the multiset intersection of
// the two codes, which handles repeated symbols on either side. Scoring is
// symmetric: Compute(a, b) == Compute(b, a).
package feedback

import (
	"fmt"

	"github.com/robalobadob/solvemind/internal/code"
)

// Feedback is the response to a single guess.
type Feedback struct {
	Fit       int `json:"fit"`
	Misplaced int `json:"misplaced"`
}

// Compute scores guess against hidden. Both codes must have the same length.
func Compute(guess, hidden code.Code) Feedback {
	var gs, hs [code.MaxLength]uint8
	var gc, hc [code.MaxAlphabet]uint8
	n := guess.Len()
	span := 0
	for i := 0; i < n; i++ {
		g, h := uint8(guess.At(i)), uint8(hidden.At(i))
		gs[i], hs[i] = g, h
		gc[g]++
		hc[h]++
		span = max(span, int(g)+1, int(h)+1)
	}
	return Score(gs[:n], hs[:n], gc[:span], hc[:span])
}

// Score is the scoring primitive shared by Compute and the solver's
// precomputed code table. gs/hs are the symbols of guess and hidden code and
// gc/hc their per-symbol occurrence counts over the same symbol range.
func Score(gs, hs, gc, hc []uint8) Feedback {
	fit := 0
	for i := range gs {
		if gs[i] == hs[i] {
			fit++
		}
	}
	common := 0
	for s := range gc {
		common += int(min(gc[s], hc[s]))
	}
	return Feedback{Fit: fit, Misplaced: common - fit}
}

// Won reports whether f is the all-fit response for codes of the given length.
func (f Feedback) Won(length int) bool {
	return f.Fit == length
}

// Index maps f to a dense bucket in [0, Buckets(length)).
func (f Feedback) Index(length int) int {
	return f.Fit*(length+1) + f.Misplaced
}

// Buckets is the number of distinct Index values for codes of the given length.
func Buckets(length int) int {
	return (length + 1) * (length + 1)
}

func (f Feedback) String() string {
	return fmt.Sprintf("Fit %d, Misplaced %d", f.Fit, f.Misplaced)
}
