// internal/history/history.go
//
// Constraint history: the ordered (guess, feedback) pairs recorded during a
// session, and the consistency predicate built on top of them.
//
// A code is consistent with the history when scoring it against every
// recorded guess reproduces the recorded feedback. The predicate is a
// conjunction, so traversal order does not matter.
package history

import (
	"errors"
	"iter"

	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/feedback"
)

var ErrEmptyHistory = errors.New("history is empty")

// Turn is a submitted guess and the feedback it received.
type Turn struct {
	Guess    code.Code
	Feedback feedback.Feedback
}

// Admits reports whether c would have produced this turn's feedback.
func (t Turn) Admits(c code.Code) bool {
	return feedback.Compute(c, t.Guess) == t.Feedback
}

// History is a stack of turns. The zero value is an empty history.
// It is not safe for concurrent mutation.
type History struct {
	turns []Turn
}

// New returns a history holding turns in push order.
func New(turns ...Turn) *History {
	h := &History{}
	for _, t := range turns {
		h.Push(t)
	}
	return h
}

func (h *History) Push(t Turn) {
	h.turns = append(h.turns, t)
}

// Pop removes and returns the most recent turn.
func (h *History) Pop() (Turn, error) {
	if len(h.turns) == 0 {
		return Turn{}, ErrEmptyHistory
	}
	last := h.turns[len(h.turns)-1]
	h.turns = h.turns[:len(h.turns)-1]
	return last, nil
}

func (h *History) Clear() {
	h.turns = nil
}

func (h *History) Len() int {
	return len(h.turns)
}

// Consistent reports whether c agrees with every recorded turn.
func (h *History) Consistent(c code.Code) bool {
	for i := len(h.turns) - 1; i >= 0; i-- {
		if !h.turns[i].Admits(c) {
			return false
		}
	}
	return true
}

// Extend returns a copy of h with t pushed on top. h is left untouched.
func (h *History) Extend(t Turn) *History {
	turns := make([]Turn, len(h.turns), len(h.turns)+1)
	copy(turns, h.turns)
	return &History{turns: append(turns, t)}
}

// Turns yields the turns in push order.
func (h *History) Turns() iter.Seq[Turn] {
	return func(yield func(Turn) bool) {
		for _, t := range h.turns {
			if !yield(t) {
				return
			}
		}
	}
}

// Recent yields the turns most recent first.
func (h *History) Recent() iter.Seq[Turn] {
	return func(yield func(Turn) bool) {
		for i := len(h.turns) - 1; i >= 0; i-- {
			if !yield(h.turns[i]) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the turns in push order.
func (h *History) Snapshot() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}
