package solver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/feedback"
	"github.com/robalobadob/solvemind/internal/history"
	"github.com/robalobadob/solvemind/internal/solver"
)

// nestedWorstCase is the literal definition: for every hypothetical secret in
// mask, extend the history with the response it would give and count the
// masked codes that survive.
func nestedWorstCase(s code.Space, guess code.Code, h *history.History, mask *solver.Mask) int {
	worst := 0
	for hyp := range mask.Indices() {
		resp := feedback.Compute(guess, s.FromOrdinal(hyp))
		ext := h.Extend(history.Turn{Guess: guess, Feedback: resp})
		count := 0
		for c := range mask.Indices() {
			if ext.Consistent(s.FromOrdinal(c)) {
				count++
			}
		}
		worst = max(worst, count)
	}
	return worst
}

func TestEvaluateMatchesNestedCount(t *testing.T) {
	s, err := code.NewSpace(4, 3)
	require.NoError(t, err)
	sv, err := solver.New(s)
	require.NoError(t, err)

	histories := []*history.History{
		{},
		history.New(turnAgainst(t, s, "aab", "bca")),
		history.New(turnAgainst(t, s, "abc", "dda"), turnAgainst(t, s, "bbd", "dda")),
	}
	for _, h := range histories {
		mask := sv.Mask(h)
		for _, g := range s.All() {
			require.Equal(t, nestedWorstCase(s, g, h, mask), sv.Evaluate(g, h, mask), "guess %v", g)
		}
	}
}

func TestEvaluateArbitraryMask(t *testing.T) {
	s, err := code.NewSpace(3, 3)
	require.NoError(t, err)
	sv, err := solver.New(s)
	require.NoError(t, err)

	// a mask that is not derived from the history: some members are
	// inconsistent and only act as hypotheses
	h := history.New(turnAgainst(t, s, "abc", "cab"))
	mask := solver.NewMask(s.Population())
	for i := 0; i < s.Population(); i += 2 {
		mask.Set(i)
	}
	for _, g := range s.All() {
		require.Equal(t, nestedWorstCase(s, g, h, mask), sv.Evaluate(g, h, mask), "guess %v", g)
	}
}

func TestEvaluateSingleCandidate(t *testing.T) {
	s := code.Default()
	sv, err := solver.New(s)
	require.NoError(t, err)

	mask := solver.NewMask(s.Population())
	secret := mustParse(t, s, "hgfe")
	mask.Set(s.Ordinal(secret))

	assert.Equal(t, 1, sv.Evaluate(secret, &history.History{}, mask))
	assert.Equal(t, 1, sv.Evaluate(mustParse(t, s, "aaaa"), &history.History{}, mask))
}

func TestEvaluateEmptyMask(t *testing.T) {
	s := code.Default()
	sv, err := solver.New(s)
	require.NoError(t, err)
	assert.Equal(t, 0, sv.Evaluate(s.Zero(), &history.History{}, solver.NewMask(s.Population())))
}
