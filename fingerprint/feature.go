package fingerprint

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Feature is a weighted token.
type Feature struct {
	Token  string
	Weight float64
}

// Tokens gives every token a weight of 1.
func Tokens(tokens []string) Features {
	out := make(Features, len(tokens))
	for i, t := range tokens {
		out[i] = Feature{Token: t, Weight: 1}
	}
	return out
}

// FromMap converts a token -> weight map, ordered by token.
func FromMap(m map[string]float64) Features {
	out := make(Features, 0, len(m))
	for t, w := range m {
		out = append(out, Feature{Token: t, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}

// Collapse merges duplicate tokens by summing their weights. The first
// occurrence decides the position.
func Collapse(features []Feature) ([]Feature, error) {
	pos := make(map[string]int, len(features))
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		if math.IsNaN(f.Weight) || math.IsInf(f.Weight, 0) {
			return nil, errors.Wrapf(ErrInvalidWeight, "token %q weight %v", f.Token, f.Weight)
		}
		if i, ok := pos[f.Token]; ok {
			out[i].Weight += f.Weight
			continue
		}
		pos[f.Token] = len(out)
		out = append(out, f)
	}
	return out, nil
}

// maxIntWeight bounds the weights summed in int64. Below 2^31 a sum cannot
// overflow before 2^32 features; heavier weights are summed as float64.
const maxIntWeight = 1 << 31

// isIntegral reports whether w is accumulated exactly as an int64.
func isIntegral(w float64) bool {
	return w == math.Trunc(w) && math.Abs(w) < maxIntWeight
}
