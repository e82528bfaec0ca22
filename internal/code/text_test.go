package code_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/solvemind/internal/code"
)

func TestParseRoundTrip(t *testing.T) {
	s := code.Default()
	for _, text := range []string{"abcd", "aaaa", "hhhh", "habg", "dcba"} {
		c, err := s.Parse(text)
		require.NoError(t, err, text)
		out, err := s.Format(c)
		require.NoError(t, err)
		assert.Equal(t, text, out)
		assert.Equal(t, text, c.String())
	}
}

func TestParseEveryCode(t *testing.T) {
	s, err := code.NewSpace(4, 3)
	require.NoError(t, err)
	for idx, c := range s.All() {
		text, err := s.Format(c)
		require.NoError(t, err)
		back, err := s.Parse(text)
		require.NoError(t, err)
		assert.Equal(t, idx, s.Ordinal(back))
	}
}

func TestParseInvalid(t *testing.T) {
	s := code.Default()
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"upper case", "ABcd"},
		{"padded", "  abcd\n"},
		{"trailing space", "abcd "},
		{"too short", "abc"},
		{"too long", "abcde"},
		{"out of range letter", "abci"},
		{"digit", "ab1d"},
		{"punctuation", "ab:d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Parse(tt.text)
			assert.ErrorIs(t, err, code.ErrInvalidFormat)
		})
	}
}

func TestParseRejectsUnicodeFolding(t *testing.T) {
	s, err := code.NewSpace(12, 4)
	require.NoError(t, err)

	c, err := s.Parse("kabc")
	require.NoError(t, err)
	assert.Equal(t, "kabc", c.String())

	// Kelvin sign, which lower-cases to 'k'
	_, err = s.Parse("Kabc")
	assert.ErrorIs(t, err, code.ErrInvalidFormat)
}

func TestParseAlphabetTooLarge(t *testing.T) {
	s, err := code.NewSpace(27, 2)
	require.NoError(t, err)

	_, err = s.Parse("ab")
	assert.ErrorIs(t, err, code.ErrInvalidFormat)

	_, err = s.Format(s.Zero())
	assert.ErrorIs(t, err, code.ErrInvalidFormat)
}

func TestStringFallsBackToIndices(t *testing.T) {
	s, err := code.NewSpace(30, 2)
	require.NoError(t, err)
	c, err := s.New(29, 1)
	require.NoError(t, err)
	assert.Equal(t, "[29 1]", c.String())
}

func TestFormatForeignCode(t *testing.T) {
	c, err := code.Default().New(7, 7, 7, 7)
	require.NoError(t, err)
	small, err := code.NewSpace(3, 4)
	require.NoError(t, err)
	_, err = small.Format(c)
	assert.ErrorIs(t, err, code.ErrInvalidFormat)
}
