// internal/solver/search.go
//
// Best-guess search.
// Responsibilities:
//   - Score every code of the space (candidates or not) by worst-case
//     remaining candidates.
//   - Rank by key = 2*score - bonus, where bonus is 1 when the guess is itself
//     a candidate; the doubled scale keeps the half-point bonus integral.
//   - Pick the lowest key; the lowest ordinal wins exact ties.
//
// Cost is O(population × candidates × (length + alphabet)), by far the
// dominant cost of the system. The scan is split into contiguous ordinal
// chunks scored by a bounded pool of goroutines; chunk winners are merged in
// ordinal order, so the worker count never changes the result. Every chunk
// checks the context each scanStride guesses, so a cancelled search stops
// within one stride per worker.
package solver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/feedback"
	"github.com/robalobadob/solvemind/internal/history"
)

var (
	ErrNoConsistentCandidates = errors.New("no consistent candidates")
	ErrResourceExhausted      = errors.New("resource exhausted")
)

// DefaultMemoryLimit bounds the precomputed code table.
const DefaultMemoryLimit = 256 << 20

// Result is the outcome of a best-guess search.
type Result struct {
	Guess     code.Code
	Ordinal   int
	Score     int  // worst-case remaining candidates after playing Guess
	Key       int  // 2*Score - 1 if Candidate, else 2*Score
	Candidate bool // Guess is itself consistent with the history
	Remaining int  // candidates before playing Guess
}

// ProgressFunc receives the number of scored guesses out of total. Calls are
// serialized; every scan reports (0, total) first and (total, total) last.
type ProgressFunc func(done, total int)

// Cache stores finished search results by mask digest.
type Cache interface {
	Lookup(ctx context.Context, space code.Space, key string) (Result, bool, error)
	Store(ctx context.Context, space code.Space, key string, r Result) error
}

type Option func(*Solver)

// WithWorkers sets the number of goroutines scoring guesses. n < 1 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Solver) { s.workers = n }
}

func WithProgress(fn ProgressFunc) Option {
	return func(s *Solver) { s.progress = fn }
}

func WithCache(c Cache) Option {
	return func(s *Solver) { s.cache = c }
}

// WithMemoryLimit caps the code table size in bytes. 0 disables the check.
func WithMemoryLimit(bytes int64) Option {
	return func(s *Solver) { s.memoryLimit = bytes }
}

// Solver runs filtering, evaluation and search over one code space.
// It is safe for concurrent use.
type Solver struct {
	space       code.Space
	table       *table
	workers     int
	memoryLimit int64
	cache       Cache

	progressMu sync.Mutex
	progress   ProgressFunc

	flight singleflight.Group
}

// New builds a solver for space. It fails with ErrResourceExhausted when the
// code table would exceed the memory limit.
func New(space code.Space, opts ...Option) (*Solver, error) {
	s := &Solver{space: space, memoryLimit: DefaultMemoryLimit}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	t, err := newTable(space, s.memoryLimit)
	if err != nil {
		return nil, err
	}
	s.table = t
	return s, nil
}

func (s *Solver) Space() code.Space { return s.space }

// Mask computes the candidate mask for h.
func (s *Solver) Mask(h *history.History) *Mask {
	return ComputeMask(s.space, h)
}

// BestGuess computes the candidate mask for h and searches it.
func (s *Solver) BestGuess(ctx context.Context, h *history.History) (Result, error) {
	return s.Search(ctx, s.Mask(h))
}

// Search finds the best guess for the candidate set mask. mask is read only
// and must not be mutated until Search returns.
//
// Concurrent searches of an identical candidate set share one scan; the
// context of the caller that started the scan governs it.
func (s *Solver) Search(ctx context.Context, mask *Mask) (Result, error) {
	if mask.Size() != s.space.Population() {
		return Result{}, fmt.Errorf("solver: mask covers %d codes, space has %d", mask.Size(), s.space.Population())
	}
	if mask.Count() == 0 {
		searchTotal.WithLabelValues("error").Inc()
		return Result{}, ErrNoConsistentCandidates
	}

	key := mask.Digest(s.space)
	v, err, shared := s.flight.Do(key, func() (any, error) {
		if s.cache != nil {
			r, ok, err := s.cache.Lookup(ctx, s.space, key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("opening book lookup")
			} else if ok {
				searchTotal.WithLabelValues("cached").Inc()
				return r, nil
			}
		}
		r, err := s.scan(ctx, mask)
		if err != nil {
			return nil, err
		}
		searchTotal.WithLabelValues("computed").Inc()
		if s.cache != nil {
			if err := s.cache.Store(ctx, s.space, key, r); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("opening book store")
			}
		}
		return r, nil
	})
	if err != nil {
		searchTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}
	if shared {
		searchTotal.WithLabelValues("shared").Inc()
	}
	return v.(Result), nil
}

// scanStride is the number of guesses scored between context checks and
// progress reports.
const scanStride = 64

// scored is a guess ordinal with its rank.
type scored struct {
	ordinal int
	score   int
	key     int
}

func (s *Solver) scan(ctx context.Context, mask *Mask) (Result, error) {
	start := time.Now()
	pop := s.space.Population()

	candidates := make([]int32, 0, mask.Count())
	for idx := range mask.Indices() {
		candidates = append(candidates, int32(idx))
	}
	searchCandidates.Observe(float64(len(candidates)))

	// several chunks per worker keep the pool busy when chunk costs differ
	chunk := max(1, pop/(s.workers*8))
	nChunks := (pop + chunk - 1) / chunk
	winners := make([]scored, nChunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	done := 0
	s.report(func() int { return 0 }, pop)
	for ci := 0; ci < nChunks; ci++ {
		lo, hi := ci*chunk, min(pop, (ci+1)*chunk)
		g.Go(func() error {
			buckets := make([]int, feedback.Buckets(s.space.Length()))
			best := scored{ordinal: -1}
			for step := lo; step < hi; step += scanStride {
				if err := gctx.Err(); err != nil {
					return err
				}
				end := min(hi, step+scanStride)
				for gi := step; gi < end; gi++ {
					score := s.worstCase(gi, candidates, buckets)
					key := 2 * score
					if mask.Get(gi) {
						key--
					}
					if best.ordinal < 0 || key < best.key {
						best = scored{ordinal: gi, score: score, key: key}
					}
				}
				n := end - step
				s.report(func() int { done += n; return done }, pop)
			}
			winners[ci] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	// a cancel after the last stride check still lets the chunks finish;
	// never hand out a result the caller already gave up on
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	win := winners[0]
	for _, w := range winners[1:] {
		if w.key < win.key {
			win = w
		}
	}

	elapsed := time.Since(start)
	searchDuration.Observe(elapsed.Seconds())
	log.Debug().
		Str("space", s.space.String()).
		Int("candidates", len(candidates)).
		Int("score", win.score).
		Int("ordinal", win.ordinal).
		Dur("elapsed", elapsed).
		Msg("best guess search")

	return Result{
		Guess:     s.space.FromOrdinal(win.ordinal),
		Ordinal:   win.ordinal,
		Score:     win.score,
		Key:       win.key,
		Candidate: mask.Get(win.ordinal),
		Remaining: len(candidates),
	}, nil
}

// report advances the scan's progress under progressMu so callbacks observe
// a monotonic count.
func (s *Solver) report(advance func() int, total int) {
	if s.progress == nil {
		return
	}
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	s.progress(advance(), total)
}
