package simdex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wodeyoulai/simdex/fingerprint"
)

func TestEntryKeyOrdersByFingerprintThenID(t *testing.T) {
	a := entryKey("b", rawFP(t, 1, 64))
	b := entryKey("a", rawFP(t, 2, 64))
	c := entryKey("b", rawFP(t, 2, 64))

	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1, 'b'}, a)
	assert.Less(t, string(a), string(b))
	assert.Less(t, string(b), string(c))
}

func TestBucket(t *testing.T) {
	bk := newBucket()
	fp := rawFP(t, 7, 64)

	assert.True(t, bk.add(Entry{ID: "x", Fingerprint: fp}))
	assert.False(t, bk.add(Entry{ID: "x", Fingerprint: fp}))
	assert.True(t, bk.add(Entry{ID: "y", Fingerprint: fp}))
	assert.Equal(t, 2, bk.len())

	var seen []string
	bk.each(func(e Entry) bool {
		seen = append(seen, e.ID)
		return true
	})
	assert.Equal(t, []string{"x", "y"}, seen)

	assert.True(t, bk.remove("x", fp))
	assert.False(t, bk.remove("x", fp))
	assert.Equal(t, 1, bk.len())
}

func TestBucket_EachIsAscending(t *testing.T) {
	bk := newBucket()
	for _, e := range []Entry{
		{ID: "c", Fingerprint: rawFP(t, 9, 64)},
		{ID: "a", Fingerprint: rawFP(t, 9, 64)},
		{ID: "z", Fingerprint: rawFP(t, 1, 64)},
		{ID: "b", Fingerprint: rawFP(t, 300, 64)},
	} {
		require.True(t, bk.add(e))
	}

	var seen []string
	bk.each(func(e Entry) bool {
		seen = append(seen, e.ID)
		return true
	})
	assert.Equal(t, []string{"z", "a", "c", "b"}, seen)

	// stops early
	var first []string
	bk.each(func(e Entry) bool {
		first = append(first, e.ID)
		return false
	})
	assert.Equal(t, []string{"z"}, first)
}

func TestRecord(t *testing.T) {
	wide, err := fingerprint.FromWords(128, []uint64{0xDEAD, 0xBEEF})
	require.NoError(t, err)

	for _, r := range []Record{
		{Op: OpAdd, ID: "doc-1", Fingerprint: rawFP(t, 8637903533912358349, 64)},
		{Op: OpDelete, ID: "", Fingerprint: rawFP(t, 0x1FFFF, 16)},
		{Op: OpAdd, ID: "wide", Fingerprint: wide},
	} {
		got, err := UnmarshalRecord(r.Marshal())
		require.NoError(t, err)
		assert.Equal(t, r.Op, got.Op)
		assert.Equal(t, r.ID, got.ID)
		assert.True(t, r.Fingerprint.Equal(got.Fingerprint), "%s", r.Fingerprint)
	}
}

func TestUnmarshalRecord_SkipsUnknownFields(t *testing.T) {
	b := Record{Op: OpAdd, ID: "a", Fingerprint: rawFP(t, 5, 64)}.Marshal()
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "future")

	got, err := UnmarshalRecord(b)
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, uint64(5), got.Fingerprint.Uint64())
}

func TestUnmarshalRecord_Corrupt(t *testing.T) {
	good := Record{Op: OpAdd, ID: "a", Fingerprint: rawFP(t, 5, 64)}.Marshal()

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated", good[:len(good)-3]},
		{"empty", nil},
		{"bad op", protowire.AppendVarint(protowire.AppendTag(nil, fieldOp, protowire.VarintType), 9)},
		{"bad tag", []byte{0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalRecord(tt.data)
			assert.ErrorIs(t, err, ErrCorruptRecord)
		})
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "add", OpAdd.String())
	assert.Equal(t, "delete", OpDelete.String())
	assert.Equal(t, "unknown", Op(0).String())
}
