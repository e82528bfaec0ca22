// internal/code/text.go
//
// Text codec for codes at the CLI and HTTP boundary: one lowercase letter per
// position, 'a' standing for symbol 0.
package code

import (
	"fmt"
	"strings"
)

// letterCount is the number of usable letters (a–z).
const letterCount = 26

// Parse decodes text into a code of this space. The text must be exactly the
// code's letters: no surrounding whitespace, no upper case.
//
// Fails with ErrInvalidFormat when:
//   - the alphabet is larger than the 26 letters available,
//   - the length differs from the space's code length,
//   - any character lies outside 'a' .. 'a'+alphabet-1.
func (s Space) Parse(text string) (Code, error) {
	if s.alphabet > letterCount {
		return Code{}, fmt.Errorf("%w: alphabet of %d cannot be written as letters", ErrInvalidFormat, s.alphabet)
	}
	if len(text) != s.length {
		return Code{}, fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidFormat, text, len(text), s.length)
	}
	c := s.Zero()
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch < 'a' || int(ch) >= 'a'+s.alphabet {
			return Code{}, fmt.Errorf("%w: %q at position %d not in a..%c", ErrInvalidFormat, ch, i, 'a'+s.alphabet-1)
		}
		c.syms[i] = ch - 'a'
	}
	return c, nil
}

// Format encodes c as letters. It fails with ErrInvalidFormat when the
// alphabet is too large for letters or c does not belong to the space.
func (s Space) Format(c Code) (string, error) {
	if s.alphabet > letterCount {
		return "", fmt.Errorf("%w: alphabet of %d cannot be written as letters", ErrInvalidFormat, s.alphabet)
	}
	if !s.Contains(c) {
		return "", fmt.Errorf("%w: code %v not in space %v", ErrInvalidFormat, c.syms[:c.n], s)
	}
	return formatLetters(c), nil
}

func formatLetters(c Code) string {
	var b strings.Builder
	b.Grow(int(c.n))
	for i := 0; i < int(c.n); i++ {
		b.WriteByte('a' + c.syms[i])
	}
	return b.String()
}
