package simdex

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wodeyoulai/simdex/fingerprint"
)

// Entry is one indexed (id, fingerprint) pair.
type Entry struct {
	ID          string
	Fingerprint fingerprint.Fingerprint
}

// entryKey orders entries inside a bucket: the big-endian fingerprint bytes
// followed by the id. Fingerprints in one index share a width, so the split
// point is fixed.
func entryKey(id string, fp fingerprint.Fingerprint) []byte {
	fpb := fp.Bytes()
	out := make([]byte, len(fpb)+len(id))
	copy(out, fpb)
	copy(out[len(fpb):], id)
	return out
}

type Op uint8

const (
	OpAdd    Op = 1
	OpDelete Op = 2
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Record is a journaled mutation.
type Record struct {
	Op          Op
	ID          string
	Fingerprint fingerprint.Fingerprint
}

const (
	fieldOp    protowire.Number = 1
	fieldID    protowire.Number = 2
	fieldWidth protowire.Number = 3
	fieldWords protowire.Number = 4
)

// Marshal encodes r in protobuf wire format.
func (r Record) Marshal() []byte {
	words := r.Fingerprint.Words()
	b := make([]byte, 0, 16+len(r.ID)+9*len(words))
	b = protowire.AppendTag(b, fieldOp, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Op))
	b = protowire.AppendTag(b, fieldID, protowire.BytesType)
	b = protowire.AppendString(b, r.ID)
	b = protowire.AppendTag(b, fieldWidth, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Fingerprint.Width()))
	for _, w := range words {
		b = protowire.AppendTag(b, fieldWords, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, w)
	}
	return b
}

// UnmarshalRecord decodes a record written by Marshal. Unknown fields are
// skipped.
func UnmarshalRecord(b []byte) (Record, error) {
	var (
		r     Record
		width uint64
		words []uint64
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return r, errors.Wrap(ErrCorruptRecord, protowire.ParseError(n).Error())
		}
		b = b[n:]

		switch {
		case num == fieldOp && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			r.Op = Op(v)
		case num == fieldID && typ == protowire.BytesType:
			r.ID, n = protowire.ConsumeString(b)
		case num == fieldWidth && typ == protowire.VarintType:
			width, n = protowire.ConsumeVarint(b)
		case num == fieldWords && typ == protowire.Fixed64Type:
			var w uint64
			w, n = protowire.ConsumeFixed64(b)
			words = append(words, w)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return r, errors.Wrapf(ErrCorruptRecord, "field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
	}

	if r.Op != OpAdd && r.Op != OpDelete {
		return r, errors.Wrapf(ErrCorruptRecord, "op %d", r.Op)
	}
	fp, err := fingerprint.FromWords(int(width), words)
	if err != nil {
		return r, errors.Wrapf(ErrCorruptRecord, "fingerprint: %v", err)
	}
	r.Fingerprint = fp
	return r, nil
}
