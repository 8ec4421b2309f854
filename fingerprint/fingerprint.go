// Package fingerprint builds SimHash fingerprints: fixed-width bit vectors
// where similar documents land a small Hamming distance apart.
package fingerprint

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

// DefaultWidth is the fingerprint width in bits used when none is given.
const DefaultWidth = 64

// Fingerprint is an immutable W-bit value. Words are stored least
// significant first.
type Fingerprint struct {
	width int
	words []uint64
}

// ValidateWidth checks that width is a positive multiple of 8.
func ValidateWidth(width int) error {
	if width <= 0 || width%8 != 0 {
		return errors.Wrapf(ErrInvalidWidth, "got %d", width)
	}
	return nil
}

func wordCount(width int) int {
	return (width + 63) / 64
}

// topMask masks the highest word down to the bits that belong to width.
func topMask(width int) uint64 {
	if r := width % 64; r != 0 {
		return (1 << uint(r)) - 1
	}
	return ^uint64(0)
}

// FromUint64 sets the value directly. The value is not masked to width, so a
// value wider than width survives unchanged; comparisons only look at the low
// width bits.
func FromUint64(v uint64, width int) (Fingerprint, error) {
	if err := ValidateWidth(width); err != nil {
		return Fingerprint{}, err
	}
	words := make([]uint64, wordCount(width))
	words[0] = v
	return Fingerprint{width: width, words: words}, nil
}

// FromWords rebuilds a fingerprint from the words returned by Words.
func FromWords(width int, words []uint64) (Fingerprint, error) {
	if err := ValidateWidth(width); err != nil {
		return Fingerprint{}, err
	}
	if len(words) != wordCount(width) {
		return Fingerprint{}, errors.Wrapf(ErrWidthMismatch, "%d words for width %d", len(words), width)
	}
	out := make([]uint64, len(words))
	copy(out, words)
	return Fingerprint{width: width, words: out}, nil
}

// FromBytes reads a big-endian value of exactly width/8 bytes.
func FromBytes(b []byte, width int) (Fingerprint, error) {
	if err := ValidateWidth(width); err != nil {
		return Fingerprint{}, err
	}
	if len(b) != width/8 {
		return Fingerprint{}, errors.Wrapf(ErrWidthMismatch, "%d bytes for width %d", len(b), width)
	}
	return Fingerprint{width: width, words: wordsFromBytes(b, width)}, nil
}

// wordsFromBytes packs a big-endian byte string into little-endian words.
func wordsFromBytes(b []byte, width int) []uint64 {
	words := make([]uint64, wordCount(width))
	n := len(b)
	for i := 0; i < n; i++ {
		bit := (n - 1 - i) * 8
		words[bit/64] |= uint64(b[i]) << uint(bit%64)
	}
	return words
}

func (f Fingerprint) Width() int { return f.width }

// IsZero reports whether f is the zero Fingerprint (no width).
func (f Fingerprint) IsZero() bool { return f.width == 0 }

// Uint64 returns the lowest 64 bits of the stored value.
func (f Fingerprint) Uint64() uint64 {
	if len(f.words) == 0 {
		return 0
	}
	return f.words[0]
}

// Words returns a copy of the stored value, least significant word first.
func (f Fingerprint) Words() []uint64 {
	out := make([]uint64, len(f.words))
	copy(out, f.words)
	return out
}

// Bytes returns the low width bits as width/8 big-endian bytes.
func (f Fingerprint) Bytes() []byte {
	n := f.width / 8
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		bit := (n - 1 - i) * 8
		out[i] = byte(f.words[bit/64] >> uint(bit%64))
	}
	return out
}

// Bit reports whether bit i (0 = least significant) is set.
func (f Fingerprint) Bit(i int) bool {
	return f.words[i/64]>>uint(i%64)&1 == 1
}

// Bits extracts the bit range [lo, hi) as little-endian words, masked to
// hi-lo bits.
func (f Fingerprint) Bits(lo, hi int) []uint64 {
	n := hi - lo
	out := make([]uint64, (n+63)/64)
	for i := range out {
		start := lo + i*64
		w, off := start/64, uint(start%64)
		v := f.words[w] >> off
		if off != 0 && w+1 < len(f.words) {
			v |= f.words[w+1] << (64 - off)
		}
		out[i] = v
	}
	if r := n % 64; r != 0 && len(out) > 0 {
		out[len(out)-1] &= (1 << uint(r)) - 1
	}
	return out
}

// Equal compares width and the full stored value.
func (f Fingerprint) Equal(o Fingerprint) bool {
	if f.width != o.width || len(f.words) != len(o.words) {
		return false
	}
	for i := range f.words {
		if f.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// Distance returns the Hamming distance over the low width bits. Fingerprints
// of different widths are never compared.
func (f Fingerprint) Distance(o Fingerprint) (int, error) {
	if f.width != o.width {
		return 0, errors.Wrapf(ErrWidthMismatch, "%d != %d", f.width, o.width)
	}
	d := 0
	last := len(f.words) - 1
	for i := range f.words {
		x := f.words[i] ^ o.words[i]
		if i == last {
			x &= topMask(f.width)
		}
		d += bits.OnesCount64(x)
	}
	return d, nil
}

// Hex renders the stored value as fixed-length hex, most significant word
// first.
func (f Fingerprint) Hex() string {
	var sb strings.Builder
	sb.Grow(len(f.words) * 16)
	for i := len(f.words) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%016x", f.words[i])
	}
	return sb.String()
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%d:%s", f.width, f.Hex())
}

// digestWords takes the trailing width/8 bytes of a digest.
func digestWords(digest []byte, width int) ([]uint64, error) {
	n := width / 8
	if len(digest) < n {
		return nil, errors.Wrapf(ErrShortDigest, "%d bytes, need %d", len(digest), n)
	}
	return wordsFromBytes(digest[len(digest)-n:], width), nil
}
