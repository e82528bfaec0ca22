package book_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/solvemind/assets"
	"github.com/robalobadob/solvemind/internal/book"
	"github.com/robalobadob/solvemind/internal/code"
	"github.com/robalobadob/solvemind/internal/history"
	"github.com/robalobadob/solvemind/internal/solver"
)

func openBook(t *testing.T) *book.Book {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every pooled connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	migrations, err := assets.Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	for _, m := range migrations {
		_, err := db.Exec(m.SQL)
		require.NoError(t, err, m.Name)
	}
	return book.New(db)
}

func TestLookupMiss(t *testing.T) {
	b := openBook(t)
	_, ok, err := b.Lookup(context.Background(), code.Default(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreAndLookup(t *testing.T) {
	ctx := context.Background()
	b := openBook(t)
	s := code.Default()
	guess, err := s.Parse("aabc")
	require.NoError(t, err)
	r := solver.Result{
		Guess:     guess,
		Ordinal:   s.Ordinal(guess),
		Score:     256,
		Key:       511,
		Candidate: true,
		Remaining: 4096,
	}
	require.NoError(t, b.Store(ctx, s, "k1", r))
	// second store keeps the first row
	require.NoError(t, b.Store(ctx, s, "k1", solver.Result{Guess: s.Zero()}))

	got, ok, err := b.Lookup(ctx, s, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r, got)

	other, err := code.NewSpace(6, 4)
	require.NoError(t, err)
	_, ok, err = b.Lookup(ctx, other, "k1")
	require.NoError(t, err)
	assert.False(t, ok, "rows are scoped to their space")

	top, err := b.Top(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Hits)
	assert.Equal(t, 8, top[0].Alphabet)
	assert.Equal(t, 4, top[0].Length)
}

func TestSolverUsesBook(t *testing.T) {
	ctx := context.Background()
	b := openBook(t)
	s, err := code.NewSpace(5, 3)
	require.NoError(t, err)

	plain, err := solver.New(s)
	require.NoError(t, err)
	cached, err := solver.New(s, solver.WithCache(b))
	require.NoError(t, err)

	h := &history.History{}
	want, err := plain.BestGuess(ctx, h)
	require.NoError(t, err)

	for range 2 {
		got, err := cached.BestGuess(ctx, h)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	top, err := b.Top(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, want.Ordinal, top[0].Ordinal)
	assert.Equal(t, 1, top[0].Hits)
}
