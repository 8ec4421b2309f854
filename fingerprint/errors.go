package fingerprint

import "github.com/pkg/errors"

// Configuration errors.
var (
	ErrInvalidWidth  = errors.New("fingerprint: width must be a positive multiple of 8")
	ErrWidthMismatch = errors.New("fingerprint: width mismatch")
	ErrShortDigest   = errors.New("fingerprint: hash digest shorter than width")
	ErrInvalidOption = errors.New("fingerprint: invalid builder option")
)

// Input shape errors.
var (
	ErrInputShape    = errors.New("fingerprint: unsupported input shape")
	ErrInvalidWeight = errors.New("fingerprint: feature weight must be finite")
)

// IsConfigurationError reports whether err stems from an invalid width,
// mismatched widths, a too short hash or a bad builder option.
func IsConfigurationError(err error) bool {
	for _, target := range []error{ErrInvalidWidth, ErrWidthMismatch, ErrShortDigest, ErrInvalidOption} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func IsInputShapeError(err error) bool {
	return errors.Is(err, ErrInputShape) || errors.Is(err, ErrInvalidWeight)
}
