// internal/httpserver/server.go
//
// HTTP server wiring for the solver backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access log, request metrics).
//   - Public endpoints: "/", "/health", "/metrics", "/book".
//   - Session endpoints (session token required): mounted under /session.
//   - Error mapping from domain sentinels to JSON error codes.
//
// Notes:
//   - Sessions live only in the in-memory store; restarting the process
//     forgets them.
//   - One solver is built per (alphabet, length) on first use and shared by
//     every session of that shape, so its opening book and singleflight
//     dedup apply across sessions.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solvemind/internal/book"
	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/history"
	"github.com/robalobadob/solvemind/internal/solver"
	"github.com/robalobadob/solvemind/internal/store"
)

// Options configures a Server.
type Options struct {
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	AllowReveal    bool
	DailySalt      string
	Alphabet       int // default shape for POST /session/new
	Length         int
	Workers        int
	MemoryLimit    int64      // bytes across all solver tables, 0 disables
	Book           *book.Book // nil disables the opening book
}

// Server bundles router, session store and the solver registry.
type Server struct {
	r       *chi.Mux
	store   store.Store
	opts    Options
	solvers *solvers
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, opts Options) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = time.Minute
	}
	if opts.Alphabet == 0 || opts.Length == 0 {
		d := code.Default()
		opts.Alphabet, opts.Length = d.Alphabet(), d.Length()
	}
	s := &Server{r: chi.NewRouter(), store: st, opts: opts, solvers: newSolvers(opts)}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                          // zerolog line + metrics per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time (best-guess scans)
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(corsFromEnv)                        // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "solvemind",
			"endpoints": []string{"/health", "/metrics", "/book", "POST /session/new", "/session/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	s.r.Get("/book", s.handleBook)

	s.mountSessions(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// handleBook lists the most used opening book entries.
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if s.opts.Book == nil {
		writeJSON(w, http.StatusOK, []book.Entry{})
		return
	}
	rows, err := s.opts.Book.Top(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// ------------------------------ solvers ------------------------------------

// solvers builds and caches one solver per code space shape. The memory
// limit covers the code tables of every cached solver together.
type solvers struct {
	mu    sync.Mutex
	opts  []solver.Option
	limit int64 // 0 disables the check
	used  int64
	m     map[[2]int]*solver.Solver
}

func newSolvers(o Options) *solvers {
	opts := []solver.Option{solver.WithWorkers(o.Workers), solver.WithMemoryLimit(o.MemoryLimit)}
	if o.Book != nil {
		opts = append(opts, solver.WithCache(o.Book))
	}
	return &solvers{opts: opts, limit: o.MemoryLimit, m: make(map[[2]int]*solver.Solver)}
}

func (p *solvers) get(alphabet, length int) (*solver.Solver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := [2]int{alphabet, length}
	if sv, ok := p.m[k]; ok {
		return sv, nil
	}
	space, err := code.NewSpace(alphabet, length)
	if err != nil {
		return nil, err
	}
	need := solver.TableBytes(space)
	if p.limit > 0 && p.used+need > p.limit {
		return nil, fmt.Errorf("%w: code table for %v needs %d bytes, %d of %d in use",
			solver.ErrResourceExhausted, space, need, p.used, p.limit)
	}
	sv, err := solver.New(space, p.opts...)
	if err != nil {
		return nil, err
	}
	p.used += need
	p.m[k] = sv
	log.Info().Stringer("space", space).Int64("tableBytes", need).Int64("usedBytes", p.used).Msg("solver ready")
	return sv, nil
}

// ------------------------------ errors -------------------------------------

type errorRes struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeError maps domain errors to status codes and JSON error codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		res    = errorRes{Detail: err.Error()}
	)
	switch {
	case errors.Is(err, code.ErrInvalidFormat):
		status, res.Error = http.StatusBadRequest, "invalid_format"
	case errors.Is(err, code.ErrUnsupportedConfiguration):
		status, res.Error = http.StatusBadRequest, "unsupported_configuration"
	case errors.Is(err, history.ErrEmptyHistory):
		status, res.Error = http.StatusConflict, "empty_history"
	case errors.Is(err, solver.ErrNoConsistentCandidates):
		status, res.Error = http.StatusConflict, "no_consistent_candidates"
	case errors.Is(err, solver.ErrResourceExhausted):
		status, res.Error = http.StatusInsufficientStorage, "resource_exhausted"
	case errors.Is(err, store.ErrNotFound):
		status, res.Error = http.StatusNotFound, "session_not_found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// chimw.Timeout answers 504 itself once the handler returns
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("request abandoned")
		return
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
		status, res = http.StatusInternalServerError, errorRes{Error: "internal"}
	}
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
