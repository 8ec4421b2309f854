package simdex

import (
	"strconv"
	"strings"

	"github.com/wodeyoulai/simdex/fingerprint"
)

// band is the half-open bit range [lo, hi) of a fingerprint.
type band struct {
	lo, hi int
}

// layoutBands splits width bits into k+1 contiguous bands. Every band is
// width/(k+1) bits wide except the last, which takes the remainder.
func layoutBands(width, k int) []band {
	n := k + 1
	step := width / n
	bands := make([]band, n)
	for i := 0; i < n; i++ {
		bands[i] = band{lo: step * i, hi: step * (i + 1)}
	}
	bands[n-1].hi = width
	return bands
}

func (b band) width() int { return b.hi - b.lo }

// key is the masked band bits as hex, high word first.
func (b band) key(fp fingerprint.Fingerprint) string {
	bits := fp.Bits(b.lo, b.hi)
	var sb strings.Builder
	for i := len(bits) - 1; i >= 0; i-- {
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(bits[i], 16))
	}
	return sb.String()
}
