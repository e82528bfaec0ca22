// internal/httpserver/auth.go
//
// Session tokens.
// A session token is an HS256 JWT carrying the session id ("sid") and an
// expiry. It is handed out by POST /session/new and must accompany every
// /session/* request as "Authorization: Bearer <token>" (or the token cookie).

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solvemind/internal/game"
	"github.com/robalobadob/solvemind/internal/store"
)

const tokenCookieName = "solvemind_token"

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

type ctxSessionKey struct{}

// signToken creates an HS256 JWT for session sid.
func (s *Server) signToken(sid string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseToken validates tok and returns its session id.
func (s *Server) parseToken(tok string) (string, error) {
	var claims sessionClaims
	t, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !t.Valid || claims.SID == "" {
		return "", errors.New("invalid token")
	}
	return claims.SID, nil
}

// requireSession resolves the bearer token to a live session and places it
// in the request context. Missing or invalid tokens get 401, tokens for
// sessions the store no longer holds get 404.
func (s *Server) requireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerOrCookie(r)
			if tok == "" {
				writeJSON(w, http.StatusUnauthorized, errorRes{Error: "unauthorized"})
				return
			}
			sid, err := s.parseToken(tok)
			if err != nil {
				log.Debug().Err(err).Msg("reject session token")
				writeJSON(w, http.StatusUnauthorized, errorRes{Error: "invalid_token"})
				return
			}
			g, err := s.store.Get(r.Context(), sid)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeJSON(w, http.StatusNotFound, errorRes{Error: "session_not_found"})
					return
				}
				writeError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxSessionKey{}, g)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentSession returns the session placed by requireSession.
func currentSession(r *http.Request) *game.Game {
	g, _ := r.Context().Value(ctxSessionKey{}).(*game.Game)
	return g
}

// setTokenCookie mirrors the token in an HttpOnly cookie for browser clients.
func setTokenCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(tokenCookieName); err == nil {
		return c.Value
	}
	return ""
}
