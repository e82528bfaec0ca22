// internal/solver/mask.go
//
// Candidate mask: one bit per code ordinal, set for codes that are still
// consistent with the history. Bits are packed into uint64 words and the
// population count is tracked on every mutation.
package solver

import (
	"encoding/binary"
	"encoding/hex"
	"iter"
	"math/bits"

	"golang.org/x/crypto/blake2b"

	"github.com/robalobadob/solvemind/internal/code"
)

type Mask struct {
	words []uint64
	size  int
	count int
}

// NewMask returns an empty mask over size ordinals.
func NewMask(size int) *Mask {
	return &Mask{words: make([]uint64, (size+63)/64), size: size}
}

// FullMask returns a mask with every ordinal set.
func FullMask(size int) *Mask {
	m := NewMask(size)
	for i := range m.words {
		m.words[i] = ^uint64(0)
	}
	if tail := size % 64; tail != 0 {
		m.words[len(m.words)-1] = (uint64(1) << tail) - 1
	}
	m.count = size
	return m
}

func (m *Mask) Set(i int) {
	w, b := i/64, uint(i%64)
	if m.words[w]&(1<<b) == 0 {
		m.words[w] |= 1 << b
		m.count++
	}
}

func (m *Mask) Unset(i int) {
	w, b := i/64, uint(i%64)
	if m.words[w]&(1<<b) != 0 {
		m.words[w] &^= 1 << b
		m.count--
	}
}

func (m *Mask) Get(i int) bool {
	return m.words[i/64]&(1<<uint(i%64)) != 0
}

// Count is the number of set bits.
func (m *Mask) Count() int { return m.count }

// Size is the number of ordinals the mask covers.
func (m *Mask) Size() int { return m.size }

func (m *Mask) Clone() *Mask {
	out := &Mask{words: make([]uint64, len(m.words)), size: m.size, count: m.count}
	copy(out.words, m.words)
	return out
}

// Equal reports bit-for-bit equality.
func (m *Mask) Equal(o *Mask) bool {
	if m.size != o.size || m.count != o.count {
		return false
	}
	for i := range m.words {
		if m.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// Indices yields the set ordinals in ascending order.
func (m *Mask) Indices() iter.Seq[int] {
	return func(yield func(int) bool) {
		for wi, w := range m.words {
			for w != 0 {
				b := bits.TrailingZeros64(w)
				if !yield(wi*64 + b) {
					return
				}
				w &= w - 1
			}
		}
	}
}

// Digest identifies the candidate set of a space. Two masks with the same
// digest have the same best guess.
func (m *Mask) Digest(s code.Space) string {
	h, _ := blake2b.New256(nil)
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(s.Alphabet()))
	binary.LittleEndian.PutUint32(buf[4:], uint32(s.Length()))
	h.Write(buf[:])
	for _, w := range m.words {
		binary.LittleEndian.PutUint64(buf[:], w)
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
