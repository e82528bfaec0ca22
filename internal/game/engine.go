// internal/game/engine.go
//
// Session engine for one hidden secret.
// Responsibilities:
//   - Create sessions with a seeded random secret (or a fixed one for tests).
//   - Score guesses, recording a turn for every guess that does not win.
//   - Undo the most recent turn, reset to a new secret.
//   - Answer solver questions about the session: consistent codes, best guess.
//
// Notes:
//   - A candidate mask is kept per recorded turn, so undo restores the exact
//     previous mask and a push only narrows the latest one.
//   - Best-guess searches run on the latest mask outside the session lock;
//     masks are never mutated once stored.
package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"iter"
	mrand "math/rand/v2"

	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/feedback"
	"github.com/robalobadob/solvemind/internal/history"
	"github.com/robalobadob/solvemind/internal/solver"
)

// New constructs a session over sv's code space with a secret drawn from a
// PCG generator seeded with seed.
func New(sv *solver.Solver, seed uint64) *Game {
	return NewWithSecret(sv, sv.Space().Random(rng(seed)))
}

// NewWithSecret constructs a session with a fixed secret (testing, replays).
// The secret must belong to sv's space.
func NewWithSecret(sv *solver.Solver, secret code.Code) *Game {
	g := &Game{
		ID:     randomID(),
		solver: sv,
		space:  sv.Space(),
	}
	g.restart(secret)
	return g
}

// Space returns the code space of the session.
func (g *Game) Space() code.Space { return g.space }

// Reset draws a new secret and clears the history.
func (g *Game) Reset(seed uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restart(g.space.Random(rng(seed)))
}

func (g *Game) restart(secret code.Code) {
	g.secret = secret
	g.history.Clear()
	g.masks = []*solver.Mask{solver.FullMask(g.space.Population())}
	g.guesses = 0
	g.won = false
}

// Submit scores guess against the secret.
// A winning guess (all positions fit) is not recorded as a turn; any other
// guess is pushed onto the history and narrows the candidate mask.
func (g *Game) Submit(guess code.Code) (feedback.Feedback, error) {
	if !g.space.Contains(guess) {
		return feedback.Feedback{}, fmt.Errorf("%w: %v is not a code of %v", code.ErrInvalidFormat, guess, g.space)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	f := feedback.Compute(guess, g.secret)
	g.guesses++
	if f.Won(g.space.Length()) {
		g.won = true
		return f, nil
	}
	g.won = false
	t := history.Turn{Guess: guess, Feedback: f}
	g.history.Push(t)
	g.masks = append(g.masks, solver.Refine(g.space, g.masks[len(g.masks)-1], t))
	return f, nil
}

// SubmitText parses text and submits it.
func (g *Game) SubmitText(text string) (code.Code, feedback.Feedback, error) {
	c, err := g.space.Parse(text)
	if err != nil {
		return code.Code{}, feedback.Feedback{}, err
	}
	f, err := g.Submit(c)
	return c, f, err
}

// Undo removes the most recent turn. Returns history.ErrEmptyHistory when
// there is nothing to undo.
func (g *Game) Undo() (history.Turn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, err := g.history.Pop()
	if err != nil {
		return history.Turn{}, err
	}
	g.masks = g.masks[:len(g.masks)-1]
	g.won = false
	return t, nil
}

// Turns returns a copy of the history in push order.
func (g *Game) Turns() []history.Turn {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.history.Snapshot()
}

// Mask returns the current candidate mask. Callers must not mutate it.
func (g *Game) Mask() *solver.Mask {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.masks[len(g.masks)-1]
}

// Remaining is the number of codes consistent with the history.
func (g *Game) Remaining() int {
	return g.Mask().Count()
}

// Consistent enumerates the codes consistent with the history at the time of
// the call, in enumeration order. Each call starts from scratch.
func (g *Game) Consistent() iter.Seq[code.Code] {
	g.mu.Lock()
	h := history.New(g.history.Snapshot()...)
	g.mu.Unlock()

	return func(yield func(code.Code) bool) {
		for _, c := range g.space.All() {
			if h.Consistent(c) && !yield(c) {
				return
			}
		}
	}
}

// BestGuess searches for the guess minimizing the worst-case number of
// remaining candidates. Fails with solver.ErrNoConsistentCandidates when the
// recorded feedback is contradictory.
func (g *Game) BestGuess(ctx context.Context) (solver.Result, error) {
	return g.solver.Search(ctx, g.Mask())
}

// Reveal returns the secret.
func (g *Game) Reveal() code.Code {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.secret
}

// Guesses is the number of guesses submitted since the last reset.
func (g *Game) Guesses() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.guesses
}

// State reports whether the last guess won.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.won {
		return StateWon
	}
	return StatePlaying
}

// rng returns a PCG generator for seed.
func rng(seed uint64) *mrand.Rand {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// randomID returns a compact 16‑hex‑char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
