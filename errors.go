package simdex

import (
	"github.com/pkg/errors"

	"github.com/wodeyoulai/simdex/fingerprint"
)

var (
	ErrInvalidTolerance = errors.New("simdex: tolerance must be in [0, width)")
	ErrManifestMismatch = errors.New("simdex: options do not match manifest")
)

var (
	ErrCorruptRecord = errors.New("simdex: corrupt record")
	ErrClosed        = errors.New("simdex: db is closed")
	ErrBatchClosed   = errors.New("simdex: batch has been closed")
)

// IsConfigurationError reports whether err is caused by an invalid width,
// tolerance or builder option, a width mismatch, or options that disagree
// with an existing manifest.
func IsConfigurationError(err error) bool {
	return fingerprint.IsConfigurationError(err) ||
		errors.Is(err, ErrInvalidTolerance) ||
		errors.Is(err, ErrManifestMismatch)
}

// IsInputShapeError reports whether err was caused by an unsupported input.
func IsInputShapeError(err error) bool {
	return fingerprint.IsInputShapeError(err)
}
