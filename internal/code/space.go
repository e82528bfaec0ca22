// internal/code/space.go
//
// Code space definitions for the solver.
// Responsibilities:
//   - Describe the alphabet size, code length and total population.
//   - Enumerate every code exactly once (position 0 is the least significant digit).
//   - Map codes to their ordinal in [0, population) and back.
//
// Notes:
//   - Code is a comparable value type; == compares element-wise.
//   - Configurations whose population exceeds MaxPopulation are rejected up front.
package code

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
)

const (
	DefaultAlphabet = 8
	DefaultLength   = 4

	// MaxAlphabet bounds the per-symbol count arrays used by feedback scoring.
	MaxAlphabet = 64
	// MaxLength bounds the fixed storage inside Code.
	MaxLength = 16
	// MaxPopulation is the largest code space that may be fully enumerated.
	MaxPopulation = 1 << 20
)

var (
	ErrInvalidFormat            = errors.New("invalid code format")
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
)

// Code is a fixed-length sequence of symbols.
type Code struct {
	syms [MaxLength]uint8
	n    uint8
}

// Len returns the number of positions in c.
func (c Code) Len() int { return int(c.n) }

// At returns the symbol at position i.
func (c Code) At(i int) int { return int(c.syms[i]) }

// Symbols returns a copy of the symbols of c.
func (c Code) Symbols() []uint8 {
	out := make([]uint8, c.n)
	copy(out, c.syms[:c.n])
	return out
}

// String renders c as letters when every symbol fits in a–z, otherwise as
// a bracketed list of symbol indices.
func (c Code) String() string {
	letters := true
	for i := 0; i < int(c.n); i++ {
		if c.syms[i] >= letterCount {
			letters = false
			break
		}
	}
	if letters {
		return formatLetters(c)
	}
	return fmt.Sprint(c.syms[:c.n])
}

// Space describes an alphabet size and code length.
type Space struct {
	alphabet   int
	length     int
	population int
}

// NewSpace validates the configuration and computes its population.
// Returns ErrUnsupportedConfiguration when the dimensions are out of range or
// the population would exceed MaxPopulation.
func NewSpace(alphabet, length int) (Space, error) {
	if alphabet < 1 || alphabet > MaxAlphabet {
		return Space{}, fmt.Errorf("%w: alphabet %d not in [1, %d]", ErrUnsupportedConfiguration, alphabet, MaxAlphabet)
	}
	if length < 1 || length > MaxLength {
		return Space{}, fmt.Errorf("%w: length %d not in [1, %d]", ErrUnsupportedConfiguration, length, MaxLength)
	}
	pop := 1
	for i := 0; i < length; i++ {
		// checked before multiplying so the product never overflows
		if pop > MaxPopulation/alphabet {
			return Space{}, fmt.Errorf("%w: %d^%d codes exceeds limit %d", ErrUnsupportedConfiguration, alphabet, length, MaxPopulation)
		}
		pop *= alphabet
	}
	return Space{alphabet: alphabet, length: length, population: pop}, nil
}

// Default returns the classic 8-color, 4-position space.
func Default() Space {
	s, _ := NewSpace(DefaultAlphabet, DefaultLength)
	return s
}

func (s Space) Alphabet() int   { return s.alphabet }
func (s Space) Length() int     { return s.length }
func (s Space) Population() int { return s.population }

// Zero returns the all-zero code, the first code in enumeration order.
func (s Space) Zero() Code {
	return Code{n: uint8(s.length)}
}

// Next advances c to the following code. ok is false when every position
// rolled over, i.e. c was the last code and the result wrapped to Zero.
func (s Space) Next(c Code) (next Code, ok bool) {
	for i := 0; i < s.length; i++ {
		if int(c.syms[i]) < s.alphabet-1 {
			c.syms[i]++
			return c, true
		}
		c.syms[i] = 0
	}
	return c, false
}

// Ordinal returns the index of c in enumeration order.
func (s Space) Ordinal(c Code) int {
	idx := 0
	for i := s.length - 1; i >= 0; i-- {
		idx = idx*s.alphabet + int(c.syms[i])
	}
	return idx
}

// FromOrdinal is the inverse of Ordinal. It panics when idx is outside
// [0, Population()), like an out-of-range slice index.
func (s Space) FromOrdinal(idx int) Code {
	if idx < 0 || idx >= s.population {
		panic(fmt.Sprintf("code: ordinal %d out of range [0, %d)", idx, s.population))
	}
	c := s.Zero()
	for i := 0; i < s.length; i++ {
		c.syms[i] = uint8(idx % s.alphabet)
		idx /= s.alphabet
	}
	return c
}

// New builds a code from symbol indices.
func (s Space) New(symbols ...int) (Code, error) {
	if len(symbols) != s.length {
		return Code{}, fmt.Errorf("%w: got %d symbols, want %d", ErrInvalidFormat, len(symbols), s.length)
	}
	c := s.Zero()
	for i, v := range symbols {
		if v < 0 || v >= s.alphabet {
			return Code{}, fmt.Errorf("%w: symbol %d at position %d not in [0, %d)", ErrInvalidFormat, v, i, s.alphabet)
		}
		c.syms[i] = uint8(v)
	}
	return c, nil
}

// Contains reports whether c has this space's length and only in-range symbols.
func (s Space) Contains(c Code) bool {
	if int(c.n) != s.length {
		return false
	}
	for i := 0; i < s.length; i++ {
		if int(c.syms[i]) >= s.alphabet {
			return false
		}
	}
	return true
}

// All yields every code with its ordinal, starting from Zero.
// Each call restarts the enumeration.
func (s Space) All() iter.Seq2[int, Code] {
	return func(yield func(int, Code) bool) {
		c := s.Zero()
		for idx := 0; ; idx++ {
			if !yield(idx, c) {
				return
			}
			var ok bool
			if c, ok = s.Next(c); !ok {
				return
			}
		}
	}
}

// Random draws a uniformly distributed code from r.
func (s Space) Random(r *rand.Rand) Code {
	c := s.Zero()
	for i := 0; i < s.length; i++ {
		c.syms[i] = uint8(r.IntN(s.alphabet))
	}
	return c
}

// String describes the space, e.g. "8^4 (4096 codes)".
func (s Space) String() string {
	return fmt.Sprintf("%d^%d (%d codes)", s.alphabet, s.length, s.population)
}
