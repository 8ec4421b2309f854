package simdex

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wodeyoulai/simdex/fingerprint"
)

const (
	DefaultTolerance        = 2
	DefaultBigBucketSize    = 200
	DefaultProgressInterval = 10000
)

type IndexOptions struct {
	// Width of the indexed fingerprints in bits.
	Width int
	// Tolerance is k: the largest Hamming distance reported as a near-dup.
	// The index splits fingerprints into k+1 bands.
	Tolerance int
	// BigBucketSize is the bucket length above which a query logs a warning.
	BigBucketSize int
	// ProgressInterval is how many entries NewIndex adds between progress logs.
	ProgressInterval int
	// Registerer receives the index metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		Width:            fingerprint.DefaultWidth,
		Tolerance:        DefaultTolerance,
		BigBucketSize:    DefaultBigBucketSize,
		ProgressInterval: DefaultProgressInterval,
	}
}

// validate fills in zero values. A zero Tolerance is kept: k=0 is a valid
// exact-match index.
func (o IndexOptions) validate() (IndexOptions, error) {
	if o.Width == 0 {
		o.Width = fingerprint.DefaultWidth
	}
	if err := fingerprint.ValidateWidth(o.Width); err != nil {
		return o, err
	}
	if o.Tolerance < 0 || o.Tolerance >= o.Width {
		return o, errors.Wrapf(ErrInvalidTolerance, "k=%d width=%d", o.Tolerance, o.Width)
	}
	if o.BigBucketSize <= 0 {
		o.BigBucketSize = DefaultBigBucketSize
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = DefaultProgressInterval
	}
	return o, nil
}

// Options configures a DB.
type Options struct {
	Builder   fingerprint.BuilderOptions
	Tolerance int

	BigBucketSize    int
	ProgressInterval int

	// NoSync skips fsync after journal writes.
	NoSync bool
	// SegmentSize of the journal files in bytes; zero takes the journal default.
	SegmentSize int
}

func DefaultOptions() Options {
	return Options{
		Builder:          fingerprint.DefaultBuilderOptions(),
		Tolerance:        DefaultTolerance,
		BigBucketSize:    DefaultBigBucketSize,
		ProgressInterval: DefaultProgressInterval,
	}
}

func (o Options) indexOptions(reg prometheus.Registerer) IndexOptions {
	width := o.Builder.Width
	if width == 0 {
		width = fingerprint.DefaultWidth
	}
	return IndexOptions{
		Width:            width,
		Tolerance:        o.Tolerance,
		BigBucketSize:    o.BigBucketSize,
		ProgressInterval: o.ProgressInterval,
		Registerer:       reg,
	}
}
