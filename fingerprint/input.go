package fingerprint

// Input is what a Builder accepts: Text, Features, RawValue or CopyFrom.
type Input interface {
	isInput()
}

// Text is tokenized with the builder's tokenizer; tokens are counted into
// features.
type Text string

// Features is a weighted feature multiset.
type Features []Feature

// RawValue is used as the fingerprint value without hashing or masking.
type RawValue uint64

// CopyFrom reuses an existing fingerprint's value.
type CopyFrom struct {
	Fingerprint Fingerprint
}

func (Text) isInput()     {}
func (Features) isInput() {}
func (RawValue) isInput() {}
func (CopyFrom) isInput() {}
