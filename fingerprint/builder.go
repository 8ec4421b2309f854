package fingerprint

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wodeyoulai/simdex/tokenizer"
)

const (
	DefaultBatchSize         = 200
	DefaultLargeWeightCutoff = 50
)

// BuilderOptions configures a Builder. Zero values take the defaults.
type BuilderOptions struct {
	// Width in bits, a multiple of 8.
	Width int
	// BatchSize bounds how many digests are held before their per-bit sums
	// are folded into the running total.
	BatchSize int
	// LargeWeightCutoff: features heavier than this skip the batch.
	LargeWeightCutoff float64
	Hasher            Hasher
	Tokenizer         tokenizer.Tokenizer
}

func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		Width:             DefaultWidth,
		BatchSize:         DefaultBatchSize,
		LargeWeightCutoff: DefaultLargeWeightCutoff,
		Hasher:            MD5(),
		Tokenizer:         tokenizer.Default(),
	}
}

// orDefault fills zero values and validates the rest.
func (o BuilderOptions) orDefault() (BuilderOptions, error) {
	def := DefaultBuilderOptions()
	if o.Width == 0 {
		o.Width = def.Width
	}
	if err := ValidateWidth(o.Width); err != nil {
		return o, err
	}
	if o.BatchSize == 0 {
		o.BatchSize = def.BatchSize
	}
	if o.BatchSize < 0 {
		return o, errors.Wrapf(ErrInvalidOption, "batch size %d", o.BatchSize)
	}
	if o.LargeWeightCutoff == 0 {
		o.LargeWeightCutoff = def.LargeWeightCutoff
	}
	if o.LargeWeightCutoff < 0 {
		return o, errors.Wrapf(ErrInvalidOption, "large weight cutoff %v", o.LargeWeightCutoff)
	}
	if o.Hasher == nil {
		o.Hasher = def.Hasher
	}
	if o.Tokenizer == nil {
		o.Tokenizer = def.Tokenizer
	}
	return o, nil
}

// Builder turns inputs into fingerprints by weighted bit-majority voting.
// A Builder holds no per-build state and may be shared.
type Builder struct {
	lg   *zap.Logger
	opts BuilderOptions
}

// NewBuilder validates opts and probes the hasher once to make sure its
// digest covers the width.
func NewBuilder(lg *zap.Logger, opts BuilderOptions) (*Builder, error) {
	if lg == nil {
		lg = zap.NewNop()
	}
	opts, err := opts.orDefault()
	if err != nil {
		return nil, err
	}
	if _, err := digestWords(opts.Hasher.Hash([]byte("test")), opts.Width); err != nil {
		return nil, errors.Wrapf(err, "hasher %s", HasherName(opts.Hasher))
	}
	return &Builder{lg: lg, opts: opts}, nil
}

// Build fingerprints in with the default options at the given width. Unlike
// BuilderOptions, a zero width is an error here.
func Build(in Input, width int) (Fingerprint, error) {
	if err := ValidateWidth(width); err != nil {
		return Fingerprint{}, err
	}
	opts := DefaultBuilderOptions()
	opts.Width = width
	b, err := NewBuilder(nil, opts)
	if err != nil {
		return Fingerprint{}, err
	}
	return b.Build(in)
}

func (b *Builder) Width() int { return b.opts.Width }

func (b *Builder) Hasher() Hasher { return b.opts.Hasher }

func (b *Builder) Build(in Input) (Fingerprint, error) {
	switch v := in.(type) {
	case Text:
		return b.buildText(string(v))
	case Features:
		return b.buildFeatures(v)
	case RawValue:
		return FromUint64(uint64(v), b.opts.Width)
	case CopyFrom:
		if v.Fingerprint.IsZero() {
			return Fingerprint{}, errors.Wrap(ErrInputShape, "copy from zero fingerprint")
		}
		// width travels with the value
		return Fingerprint{width: v.Fingerprint.width, words: v.Fingerprint.Words()}, nil
	case nil:
		return Fingerprint{}, errors.Wrap(ErrInputShape, "nil input")
	default:
		return Fingerprint{}, errors.Wrapf(ErrInputShape, "%T", in)
	}
}

func (b *Builder) buildText(text string) (Fingerprint, error) {
	return b.buildFeatures(Tokens(b.opts.Tokenizer.Tokenize(text)))
}

func (b *Builder) buildFeatures(features Features) (Fingerprint, error) {
	feats, err := Collapse(features)
	if err != nil {
		return Fingerprint{}, err
	}

	width := b.opts.Width
	acc := newAccumulator(width, b.opts.BatchSize)
	for _, f := range feats {
		words, err := digestWords(b.opts.Hasher.Hash([]byte(f.Token)), width)
		if err != nil {
			return Fingerprint{}, errors.Wrapf(err, "token %q", f.Token)
		}
		switch {
		case !isIntegral(f.Weight):
			acc.addFloat(words, f.Weight)
		case f.Weight > b.opts.LargeWeightCutoff:
			acc.addInt(words, int64(f.Weight))
		default:
			acc.push(words, int64(f.Weight))
		}
	}
	value := acc.value()

	if ce := b.lg.Check(zap.DebugLevel, "fingerprint built"); ce != nil {
		ce.Write(
			zap.Int("features", len(feats)),
			zap.Int("batches", acc.batches),
			zap.Int("bypassed", acc.bypassed),
		)
	}
	return Fingerprint{width: width, words: value}, nil
}
