// db.go
//
// Database helpers for the opening book.
// Responsibilities:
//   - Opening SQLite database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded assets/sql/*.sql migrations (idempotent, recorded
//     in _migrations).
//
// Note: This file assumes SQLite but can be adapted for other backends.

package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solvemind/assets"
	"github.com/robalobadob/solvemind/internal/book"
)

// openDB opens (and creates if missing) a SQLite database file.
//
//   - Ensures parent directory exists for relative DSNs (e.g. ./data/book.db).
//   - Configures busy timeout and WAL journaling mode.
//   - Enforces foreign keys.
func openDB(dsn string) (*sql.DB, error) {
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas on %s: %w", dsn, err)
	}
	return db, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// migrate applies the embedded SQL migrations in name order, recording each
// in _migrations so a second run is a no-op. Scripts that open their own
// transaction or switch foreign keys off run directly on db; all others run
// in a transaction of their own.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	migrations, err := assets.Migrations()
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}

	for _, m := range migrations {
		var one int
		switch err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, m.Name).Scan(&one); {
		case err == nil:
			log.Debug().Str("migration", m.Name).Msg("already applied")
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("query _migrations: %w", err)
		}

		if selfManaged(m.SQL) {
			if err := applyMigration(db, m); err != nil {
				return err
			}
			log.Info().Str("migration", m.Name).Msg("applied (self-managed)")
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin %s: %w", m.Name, err)
		}
		if err := applyMigration(tx, m); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.Name, err)
		}
		log.Info().Str("migration", m.Name).Msg("applied")
	}
	return nil
}

func applyMigration(x execer, m assets.Migration) error {
	if _, err := x.Exec(m.SQL); err != nil {
		return fmt.Errorf("apply %s: %w", m.Name, err)
	}
	if _, err := x.Exec(`INSERT INTO _migrations(name) VALUES (?)`, m.Name); err != nil {
		return fmt.Errorf("record %s: %w", m.Name, err)
	}
	return nil
}

// selfManaged reports whether script handles its own transaction or
// foreign key pragmas.
func selfManaged(script string) bool {
	upper := strings.ToUpper(script)
	return strings.Contains(upper, "BEGIN TRANSACTION") ||
		strings.Contains(upper, "PRAGMA FOREIGN_KEYS=OFF") ||
		strings.Contains(upper, "PRAGMA FOREIGN_KEYS = OFF")
}

// openBook opens and migrates the opening book at dsn. An empty dsn disables
// the book: it returns a nil book and a no-op closer.
func openBook(dsn string) (*book.Book, func(), error) {
	if dsn == "" {
		return nil, func() {}, nil
	}
	db, err := openDB(dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info().Str("path", dsn).Msg("opening book ready")
	return book.New(db), func() { _ = db.Close() }, nil
}
