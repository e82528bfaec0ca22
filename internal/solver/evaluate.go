// internal/solver/evaluate.go
//
// Guess evaluation by worst-case remaining candidates.
//
// For a guess g, every candidate h is treated as the hypothetical secret. The
// response g would get is feedback(g, h), and the candidates left afterwards
// are those consistent with the history plus Turn(g, response). Instead of
// recounting the mask for each hypothesis, candidates are partitioned once by
// their response to g: the survivors for hypothesis h are exactly the bucket
// h falls in. The result is the largest bucket any hypothesis reaches.
package solver

import (
	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/feedback"
	"github.com/robalobadob/solvemind/internal/history"
)

// Evaluate returns the worst-case number of candidates under mask that stay
// consistent with h after guess is played. Codes in mask that h rules out are
// never counted as survivors, but still act as hypotheses, so an arbitrary
// mask gives the same answer as the literal nested count.
func (s *Solver) Evaluate(guess code.Code, h *history.History, mask *Mask) int {
	l := s.space.Length()
	g := s.space.Ordinal(guess)
	buckets := make([]int, feedback.Buckets(l))
	for idx := range mask.Indices() {
		if h.Consistent(s.space.FromOrdinal(idx)) {
			buckets[s.table.score(g, idx).Index(l)]++
		}
	}
	worst := 0
	for idx := range mask.Indices() {
		worst = max(worst, buckets[s.table.score(g, idx).Index(l)])
	}
	return worst
}

// worstCase is Evaluate for a guess ordinal against a candidate list that is
// already known to be consistent with the history. buckets is scratch space of
// feedback.Buckets(length) entries.
func (s *Solver) worstCase(g int, candidates []int32, buckets []int) int {
	clear(buckets)
	l := s.space.Length()
	worst := 0
	for _, h := range candidates {
		b := s.table.score(g, int(h)).Index(l)
		buckets[b]++
		if buckets[b] > worst {
			worst = buckets[b]
		}
	}
	return worst
}
