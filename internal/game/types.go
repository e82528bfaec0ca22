// internal/game/types.go
//
// Core type definitions for a solving session.
// Defines:
//   - State: coarse session state (playing/won).
//   - Game: the secret, the constraint history and the cached candidate masks.

package game

import (
	"sync"

	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/history"
	"github.com/robalobadob/solvemind/internal/solver"
)

// State summarizes where a session stands.
//   - "playing": the secret has not been guessed yet.
//   - "won":     the last submitted guess matched the secret.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
)

// Game holds the state of a single solving session.
// All methods are safe for concurrent use.
type Game struct {
	ID string // Unique session identifier (random hex string).

	mu      sync.Mutex
	solver  *solver.Solver
	space   code.Space
	secret  code.Code
	history history.History
	masks   []*solver.Mask // masks[i] is the candidate mask after i turns
	guesses int            // guesses submitted since the last reset, wins included
	won     bool
}
