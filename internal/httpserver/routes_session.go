// internal/httpserver/routes_session.go
//
// HTTP routes for solving sessions.
//   - POST   /session/new        → create a session, returns its token
//   - POST   /session/guess      → score a guess against the secret
//   - POST   /session/undo       → drop the most recent turn
//   - POST   /session/reset      → new secret, empty history
//   - GET    /session/turns      → history, most recent first
//   - GET    /session/consistent → codes consistent with the history
//   - GET    /session/best       → best next guess (minimax)
//   - GET    /session/reveal     → the secret (only when enabled)
//   - DELETE /session            → end the session
//
// Daily sessions draw their secret from a seed derived from the UTC date, so
// everyone playing the same shape on the same day chases the same code.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/daily"
	"github.com/robalobadob/solvemind/internal/game"
	"github.com/robalobadob/solvemind/internal/history"
)

// mountSessions registers all /session routes.
func (s *Server) mountSessions(r chi.Router) {
	r.Post("/session/new", s.handleNewSession)
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession())
		r.Delete("/session", s.handleEndSession)
		r.Post("/session/guess", s.handleGuess)
		r.Post("/session/undo", s.handleUndo)
		r.Post("/session/reset", s.handleReset)
		r.Get("/session/turns", s.handleTurns)
		r.Get("/session/consistent", s.handleConsistent)
		r.Get("/session/best", s.handleBest)
		r.Get("/session/reveal", s.handleReveal)
	})
}

type newSessionReq struct {
	Alphabet *int    `json:"alphabet"`
	Length   *int    `json:"length"`
	Seed     *uint64 `json:"seed"`
	Daily    bool    `json:"daily"`
}

type newSessionRes struct {
	SessionID  string    `json:"sessionId"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Alphabet   int       `json:"alphabet"`
	Length     int       `json:"length"`
	Population int       `json:"population"`
	Date       string    `json:"date,omitempty"`
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionReq
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json", Detail: err.Error()})
		return
	}
	alphabet, length := s.opts.Alphabet, s.opts.Length
	if req.Alphabet != nil {
		alphabet = *req.Alphabet
	}
	if req.Length != nil {
		length = *req.Length
	}
	sv, err := s.solvers.get(alphabet, length)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := newSessionRes{Alphabet: alphabet, Length: length, Population: sv.Space().Population()}
	seed, date := s.seedFor(req.Seed, req.Daily)
	res.Date = date

	g := game.New(sv, seed)
	if err := s.store.Save(r.Context(), g); err != nil {
		writeError(w, r, err)
		return
	}
	tok, exp, err := s.signToken(g.ID)
	if err != nil {
		writeError(w, r, fmt.Errorf("sign token: %w", err))
		return
	}
	setTokenCookie(w, tok, exp)
	res.SessionID, res.Token, res.ExpiresAt = g.ID, tok, exp

	log.Info().Str("session", g.ID).Stringer("space", sv.Space()).Bool("daily", req.Daily).Int("live", s.store.Len()).Msg("session created")
	writeJSON(w, http.StatusCreated, res)
}

// seedFor picks the secret seed: today's daily seed, an explicit one, or a
// random one.
func (s *Server) seedFor(explicit *uint64, isDaily bool) (seed uint64, date string) {
	switch {
	case isDaily:
		now := time.Now()
		return daily.Seed(now, s.opts.DailySalt), daily.DateKey(now)
	case explicit != nil:
		return *explicit, ""
	default:
		return mrand.Uint64(), ""
	}
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	g := currentSession(r)
	if err := s.store.Delete(r.Context(), g.ID); err != nil {
		writeError(w, r, err)
		return
	}
	clearTokenCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// guessReq carries a guess as letters or, for alphabets beyond 26 symbols,
// as symbol indices.
type guessReq struct {
	Guess   string `json:"guess"`
	Symbols []int  `json:"symbols"`
}

type guessRes struct {
	Guess     string     `json:"guess"`
	Fit       int        `json:"fit"`
	Misplaced int        `json:"misplaced"`
	State     game.State `json:"state"`
	Remaining int        `json:"remaining"`
	Guesses   int        `json:"guesses"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	g := currentSession(r)
	var req guessReq
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json", Detail: err.Error()})
		return
	}

	var (
		guess code.Code
		err   error
	)
	if req.Symbols != nil {
		guess, err = g.Space().New(req.Symbols...)
	} else {
		guess, err = g.Space().Parse(req.Guess)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := g.Submit(guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guessRes{
		Guess:     guess.String(),
		Fit:       f.Fit,
		Misplaced: f.Misplaced,
		State:     g.State(),
		Remaining: g.Remaining(),
		Guesses:   g.Guesses(),
	})
}

type turnRes struct {
	Guess     string `json:"guess"`
	Fit       int    `json:"fit"`
	Misplaced int    `json:"misplaced"`
}

func toTurnRes(t history.Turn) turnRes {
	return turnRes{Guess: t.Guess.String(), Fit: t.Feedback.Fit, Misplaced: t.Feedback.Misplaced}
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	g := currentSession(r)
	t, err := g.Undo()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turn": toTurnRes(t), "remaining": g.Remaining()})
}

type resetReq struct {
	Seed  *uint64 `json:"seed"`
	Daily bool    `json:"daily"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	g := currentSession(r)
	var req resetReq
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json", Detail: err.Error()})
		return
	}
	seed, _ := s.seedFor(req.Seed, req.Daily)
	g.Reset(seed)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleTurns lists the history most recent first.
func (s *Server) handleTurns(w http.ResponseWriter, r *http.Request) {
	turns := currentSession(r).Turns()
	out := make([]turnRes, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		out = append(out, toTurnRes(turns[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type consistentRes struct {
	Count int      `json:"count"`
	Codes []string `json:"codes"`
}

// handleConsistent returns the number of consistent codes and the first
// `limit` of them (default 100) in enumeration order.
func (s *Server) handleConsistent(w http.ResponseWriter, r *http.Request) {
	g := currentSession(r)
	limit := queryInt(r, "limit", 100)
	res := consistentRes{Count: g.Remaining(), Codes: []string{}}
	for c := range g.Consistent() {
		if len(res.Codes) >= limit {
			break
		}
		res.Codes = append(res.Codes, c.String())
	}
	writeJSON(w, http.StatusOK, res)
}

type bestRes struct {
	Guess     string `json:"guess"`
	Ordinal   int    `json:"ordinal"`
	Score     int    `json:"score"`
	Candidate bool   `json:"candidate"`
	Remaining int    `json:"remaining"`
}

func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	res, err := currentSession(r).BestGuess(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bestRes{
		Guess:     res.Guess.String(),
		Ordinal:   res.Ordinal,
		Score:     res.Score,
		Candidate: res.Candidate,
		Remaining: res.Remaining,
	})
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	if !s.opts.AllowReveal {
		writeJSON(w, http.StatusForbidden, errorRes{Error: "reveal_disabled"})
		return
	}
	g := currentSession(r)
	log.Info().Str("session", g.ID).Msg("secret revealed")
	writeJSON(w, http.StatusOK, map[string]string{"secret": g.Reveal().String()})
}

// decodeBody decodes a JSON body into v; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func queryInt(r *http.Request, key string, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && n > 0 {
		return n
	}
	return def
}
