// Package book persists finished best-guess searches in SQLite so that
// common positions (the opening above all) are answered without a rescan.
//
// Rows are keyed by the candidate mask digest, which already encodes the code
// space dimensions. The book holds derived data only; dropping it changes
// nothing but latency.
package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/solver"
)

type Book struct{ db *sql.DB }

func New(db *sql.DB) *Book { return &Book{db: db} }

var _ solver.Cache = (*Book)(nil)

// Lookup returns the stored result for key and bumps its hit counter.
func (b *Book) Lookup(ctx context.Context, s code.Space, key string) (solver.Result, bool, error) {
	var (
		ordinal int
		r       solver.Result
	)
	err := b.db.QueryRowContext(ctx,
		`SELECT ordinal, score, rank_key, candidate, remaining
		 FROM best_guesses WHERE digest=? AND alphabet=? AND length=?`,
		key, s.Alphabet(), s.Length(),
	).Scan(&ordinal, &r.Score, &r.Key, &r.Candidate, &r.Remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return solver.Result{}, false, nil
	}
	if err != nil {
		return solver.Result{}, false, err
	}
	if ordinal < 0 || ordinal >= s.Population() {
		return solver.Result{}, false, fmt.Errorf("book row %s: ordinal %d out of range for %v", key, ordinal, s)
	}
	r.Ordinal = ordinal
	r.Guess = s.FromOrdinal(ordinal)

	if _, err := b.db.ExecContext(ctx, `UPDATE best_guesses SET hits = hits + 1 WHERE digest=?`, key); err != nil {
		return solver.Result{}, false, err
	}
	return r, true, nil
}

// Store records r under key. An existing row is kept as is.
func (b *Book) Store(ctx context.Context, s code.Space, key string, r solver.Result) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO best_guesses
			(digest, alphabet, length, ordinal, score, rank_key, candidate, remaining)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key, s.Alphabet(), s.Length(), r.Ordinal, r.Score, r.Key, r.Candidate, r.Remaining,
	)
	return err
}

// Entry is one row of the book summary.
type Entry struct {
	Digest    string `json:"digest"`
	Alphabet  int    `json:"alphabet"`
	Length    int    `json:"length"`
	Ordinal   int    `json:"ordinal"`
	Score     int    `json:"score"`
	Remaining int    `json:"remaining"`
	Hits      int    `json:"hits"`
}

// Top lists the most used entries, most hits first.
func (b *Book) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := b.db.QueryContext(ctx, `
		SELECT digest, alphabet, length, ordinal, score, remaining, hits
		FROM best_guesses
		ORDER BY hits DESC, remaining DESC, created_at ASC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Digest, &e.Alphabet, &e.Length, &e.Ordinal, &e.Score, &e.Remaining, &e.Hits); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
