package game_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/feedback"
	"github.com/robalobadob/solvemind/internal/game"
	"github.com/robalobadob/solvemind/internal/history"
	"github.com/robalobadob/solvemind/internal/solver"
)

func newSolver(t *testing.T, alphabet, length int) *solver.Solver {
	t.Helper()
	s, err := code.NewSpace(alphabet, length)
	require.NoError(t, err)
	sv, err := solver.New(s)
	require.NoError(t, err)
	return sv
}

func withSecret(t *testing.T, sv *solver.Solver, secret string) *game.Game {
	t.Helper()
	c, err := sv.Space().Parse(secret)
	require.NoError(t, err)
	return game.NewWithSecret(sv, c)
}

func TestSubmitScenarios(t *testing.T) {
	sv := newSolver(t, 8, 4)
	g := withSecret(t, sv, "abcd")
	assert.Len(t, g.ID, 16)
	assert.Equal(t, game.StatePlaying, g.State())

	_, f, err := g.SubmitText("dcba")
	require.NoError(t, err)
	assert.Equal(t, feedback.Feedback{Fit: 0, Misplaced: 4}, f)
	assert.Len(t, g.Turns(), 1)

	_, f, err = g.SubmitText("abcd")
	require.NoError(t, err)
	assert.Equal(t, feedback.Feedback{Fit: 4, Misplaced: 0}, f)
	assert.Equal(t, game.StateWon, g.State())
	assert.Len(t, g.Turns(), 1, "a win is not recorded")
	assert.Equal(t, 2, g.Guesses())

	g2 := withSecret(t, sv, "abab")
	_, f, err = g2.SubmitText("aabb")
	require.NoError(t, err)
	assert.Equal(t, feedback.Feedback{Fit: 2, Misplaced: 2}, f)
}

func TestSubmitInvalid(t *testing.T) {
	sv := newSolver(t, 8, 4)
	g := withSecret(t, sv, "abcd")

	_, _, err := g.SubmitText("abcz")
	assert.ErrorIs(t, err, code.ErrInvalidFormat)

	other, err := code.NewSpace(8, 5)
	require.NoError(t, err)
	_, err = g.Submit(other.Zero())
	assert.ErrorIs(t, err, code.ErrInvalidFormat)
	assert.Empty(t, g.Turns())
	assert.Equal(t, 0, g.Guesses())
}

func TestUndoRestoresMask(t *testing.T) {
	sv := newSolver(t, 8, 4)
	g := withSecret(t, sv, "hfca")

	_, err := g.Undo()
	assert.ErrorIs(t, err, history.ErrEmptyHistory)

	_, _, err = g.SubmitText("aabb")
	require.NoError(t, err)
	before := g.Mask().Clone()

	_, _, err = g.SubmitText("ccdd")
	require.NoError(t, err)
	assert.Less(t, g.Remaining(), before.Count())

	tr, err := g.Undo()
	require.NoError(t, err)
	assert.Equal(t, "ccdd", tr.Guess.String())
	assert.True(t, g.Mask().Equal(before))
}

func TestMaskMatchesRecompute(t *testing.T) {
	sv := newSolver(t, 6, 4)
	g := withSecret(t, sv, "fbda")
	for _, guess := range []string{"aabb", "ccdd", "eeff", "abcd"} {
		_, _, err := g.SubmitText(guess)
		require.NoError(t, err)
		h := history.New(g.Turns()...)
		require.True(t, g.Mask().Equal(sv.Mask(h)))
	}
	for range 2 {
		_, err := g.Undo()
		require.NoError(t, err)
		h := history.New(g.Turns()...)
		require.True(t, g.Mask().Equal(sv.Mask(h)))
	}
}

func TestConsistentListsCandidates(t *testing.T) {
	sv := newSolver(t, 4, 3)
	g := withSecret(t, sv, "dab")
	_, _, err := g.SubmitText("abc")
	require.NoError(t, err)

	codes := slices.Collect(g.Consistent())
	assert.Equal(t, g.Remaining(), len(codes))
	assert.Contains(t, codes, g.Reveal())

	// restartable
	assert.Equal(t, codes, slices.Collect(g.Consistent()))

	// sorted by ordinal
	s := g.Space()
	for i := 1; i < len(codes); i++ {
		assert.Less(t, s.Ordinal(codes[i-1]), s.Ordinal(codes[i]))
	}
}

func TestResetClearsHistory(t *testing.T) {
	sv := newSolver(t, 8, 4)
	g := game.New(sv, 1)
	_, _, err := g.SubmitText("aabb")
	require.NoError(t, err)

	g.Reset(2)
	assert.Empty(t, g.Turns())
	assert.Equal(t, 0, g.Guesses())
	assert.Equal(t, sv.Space().Population(), g.Remaining())
}

func TestSeededSecret(t *testing.T) {
	sv := newSolver(t, 8, 4)
	a := game.New(sv, 42)
	b := game.New(sv, 42)
	assert.Equal(t, a.Reveal(), b.Reveal())
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, sv.Space().Contains(a.Reveal()))
}

func TestBestGuessSolvesGame(t *testing.T) {
	sv := newSolver(t, 6, 4)
	g := withSecret(t, sv, "fecd")
	ctx := context.Background()

	for i := 0; i < 8 && g.State() != game.StateWon; i++ {
		r, err := g.BestGuess(ctx)
		require.NoError(t, err)
		_, err = g.Submit(r.Guess)
		require.NoError(t, err)
	}
	assert.Equal(t, game.StateWon, g.State())
	assert.Contains(t, slices.Collect(g.Consistent()), g.Reveal())
}

func TestBestGuessAfterMisses(t *testing.T) {
	sv := newSolver(t, 8, 4)
	g := withSecret(t, sv, "abcd")
	_, _, err := g.SubmitText("aaaa")
	require.NoError(t, err)
	_, _, err = g.SubmitText("efgh")
	require.NoError(t, err)

	r, err := g.BestGuess(context.Background())
	require.NoError(t, err)
	assert.True(t, g.Space().Contains(r.Guess))
	assert.Equal(t, g.Remaining(), r.Remaining)
}
