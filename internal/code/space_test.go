package code_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/solvemind/internal/code"
)

func TestNewSpace(t *testing.T) {
	tests := []struct {
		name       string
		alphabet   int
		length     int
		population int
		wantErr    bool
	}{
		{"default", 8, 4, 4096, false},
		{"single", 1, 1, 1, false},
		{"binary", 2, 10, 1024, false},
		{"binary max length", 2, 16, 65536, false},
		{"over limit", 5, 9, 0, true},
		{"exactly max", 4, 10, 1 << 20, false},
		{"zero alphabet", 0, 4, 0, true},
		{"alphabet too big", code.MaxAlphabet + 1, 2, 0, true},
		{"zero length", 8, 0, 0, true},
		{"length too big", 2, code.MaxLength + 1, 0, true},
		{"population overflow", 64, 16, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := code.NewSpace(tt.alphabet, tt.length)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, code.ErrUnsupportedConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.population, s.Population())
			assert.Equal(t, tt.alphabet, s.Alphabet())
			assert.Equal(t, tt.length, s.Length())
		})
	}
}

func TestDefault(t *testing.T) {
	s := code.Default()
	assert.Equal(t, 8, s.Alphabet())
	assert.Equal(t, 4, s.Length())
	assert.Equal(t, 4096, s.Population())
	assert.Equal(t, "8^4 (4096 codes)", s.String())
}

func TestEnumerationVisitsEveryCodeOnce(t *testing.T) {
	for _, dims := range [][2]int{{8, 4}, {3, 5}, {6, 1}, {1, 3}} {
		s, err := code.NewSpace(dims[0], dims[1])
		require.NoError(t, err)

		seen := make(map[code.Code]bool, s.Population())
		c := s.Zero()
		steps := 0
		for {
			require.False(t, seen[c], "code %v visited twice", c)
			seen[c] = true
			assert.Equal(t, steps, s.Ordinal(c))
			steps++

			var ok bool
			c, ok = s.Next(c)
			if !ok {
				break
			}
		}
		assert.Equal(t, s.Population(), len(seen))
		assert.Equal(t, s.Zero(), c, "wraps back to zero")
	}
}

func TestNextIsLittleEndian(t *testing.T) {
	s := code.Default()
	c, ok := s.Next(s.Zero())
	require.True(t, ok)
	assert.Equal(t, 1, c.At(0))
	assert.Equal(t, 0, c.At(1))
	assert.Equal(t, "baaa", c.String())
}

func TestAllMatchesFromOrdinal(t *testing.T) {
	s, err := code.NewSpace(5, 3)
	require.NoError(t, err)

	n := 0
	for idx, c := range s.All() {
		assert.Equal(t, s.FromOrdinal(idx), c)
		n++
	}
	assert.Equal(t, s.Population(), n)

	// restartable and stoppable
	n = 0
	for range s.All() {
		n++
		if n == 7 {
			break
		}
	}
	assert.Equal(t, 7, n)
}

func TestFromOrdinalOutOfRangePanics(t *testing.T) {
	s := code.Default()
	assert.Panics(t, func() { s.FromOrdinal(-1) })
	assert.Panics(t, func() { s.FromOrdinal(s.Population()) })
}

func TestNew(t *testing.T) {
	s := code.Default()

	c, err := s.New(0, 1, 2, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1, 2, 7}, c.Symbols())
	assert.True(t, s.Contains(c))

	_, err = s.New(0, 1, 2)
	assert.ErrorIs(t, err, code.ErrInvalidFormat)

	_, err = s.New(0, 1, 2, 8)
	assert.ErrorIs(t, err, code.ErrInvalidFormat)
}

func TestContains(t *testing.T) {
	small, err := code.NewSpace(3, 4)
	require.NoError(t, err)

	c, err := code.Default().New(0, 0, 0, 5)
	require.NoError(t, err)
	assert.False(t, small.Contains(c))

	other, err := code.NewSpace(8, 3)
	require.NoError(t, err)
	assert.False(t, other.Contains(code.Default().Zero()))
}

func TestRandomStaysInSpace(t *testing.T) {
	s, err := code.NewSpace(6, 5)
	require.NoError(t, err)
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		assert.True(t, s.Contains(s.Random(r)))
	}
}

func TestRandomIsSeeded(t *testing.T) {
	s := code.Default()
	a := s.Random(rand.New(rand.NewPCG(42, 7)))
	b := s.Random(rand.New(rand.NewPCG(42, 7)))
	assert.Equal(t, a, b)
}
