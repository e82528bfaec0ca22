package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/game"
	"github.com/robalobadob/solvemind/internal/history"
	"github.com/robalobadob/solvemind/internal/solver"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := openDB(filepath.Join(t.TempDir(), "data", "book.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, migrate(db))
	require.NoError(t, migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpenDBOnDirectory(t *testing.T) {
	db, err := openDB(t.TempDir())
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestSelfManaged(t *testing.T) {
	assert.True(t, selfManaged("begin transaction;\nCREATE TABLE t (x);\nCOMMIT;"))
	assert.True(t, selfManaged("PRAGMA foreign_keys=OFF;"))
	assert.False(t, selfManaged("CREATE TABLE t (x);"))
}

func TestOpenBookDisabled(t *testing.T) {
	b, closeBook, err := openBook("")
	require.NoError(t, err)
	assert.Nil(t, b)
	closeBook()
}

func TestAutoPlayWithBook(t *testing.T) {
	b, closeBook, err := openBook(filepath.Join(t.TempDir(), "book.db"))
	require.NoError(t, err)
	defer closeBook()

	s, err := code.NewSpace(5, 4)
	require.NoError(t, err)
	sv, err := solver.New(s, solver.WithCache(b))
	require.NoError(t, err)

	for _, secret := range []string{"eeee", "abcd", "dcab"} {
		c, err := s.Parse(secret)
		require.NoError(t, err)
		var out bytes.Buffer
		require.NoError(t, autoPlay(context.Background(), game.NewWithSecret(sv, c), &out))
		assert.Contains(t, out.String(), "Solved "+secret)
	}

	// the opening is shared by every game
	top, err := b.Top(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 2, top[0].Hits)
	assert.Equal(t, s.Population(), top[0].Remaining)

	first, err := sv.BestGuess(context.Background(), &history.History{})
	require.NoError(t, err)
	assert.Equal(t, first.Ordinal, top[0].Ordinal)
}
