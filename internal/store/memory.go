// internal/store/memory.go
//
// In-memory session store for the HTTP server.
// Sessions are never persisted: the secret and the constraint history live
// only as long as the process does.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Get and Delete report ErrNotFound for unknown IDs.
//   - With a TTL, sessions expire ttl after their last Save; expired entries
//     are invisible at once and swept from the map on the next Save.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solvemind/internal/game"
)

// ErrNotFound is returned for session IDs the store does not hold.
var ErrNotFound = errors.New("session not found")

// Store defines the lookup interface for live sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Delete drops a session.
	Delete(ctx context.Context, id string) error

	// Len is the number of live sessions.
	Len() int
}

// Option configures the in-memory store.
type Option func(*memory)

// WithTTL drops sessions ttl after they were last saved. 0 keeps sessions
// until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(m *memory) { m.ttl = ttl }
}

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(m *memory) { m.now = now }
}

type entry struct {
	game    *game.Game
	expires time.Time // zero when the store has no TTL
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex     // guards games map
	games map[string]entry // keyed by Game.ID
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore(opts ...Option) Store {
	m := &memory{games: make(map[string]entry), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *memory) expired(e entry, now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Save adds or updates the session and sweeps out expired ones.
func (m *memory) Save(_ context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if n := m.sweep(now); n > 0 {
		log.Debug().Int("evicted", n).Msg("expired sessions dropped")
	}
	e := entry{game: g}
	if m.ttl > 0 {
		e.expires = now.Add(m.ttl)
	}
	m.games[g.ID] = e
	return nil
}

// sweep deletes expired sessions. Callers hold the write lock.
func (m *memory) sweep(now time.Time) int {
	n := 0
	for id, e := range m.games {
		if m.expired(e, now) {
			delete(m.games, id)
			n++
		}
	}
	return n
}

// Get looks up a session by ID. Expired sessions are reported as not found.
func (m *memory) Get(_ context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok && !m.expired(e, m.now()) {
		return e.game, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[id]
	if !ok || m.expired(e, m.now()) {
		delete(m.games, id)
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.games, id)
	return nil
}

// Len is the number of unexpired sessions.
func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := m.now()
	n := 0
	for _, e := range m.games {
		if !m.expired(e, now) {
			n++
		}
	}
	return n
}
