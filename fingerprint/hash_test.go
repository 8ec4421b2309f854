package fingerprint

import (
	"crypto/md5"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wodeyoulai/simdex/tools/lru"
)

func TestUint64Hasher_BigEndian(t *testing.T) {
	h := Uint64Hasher(func([]byte) uint64 { return 0x0102030405060708 })
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, h.Hash([]byte("x")))
}

func TestXXHash64_MatchesSum64(t *testing.T) {
	words, err := digestWords(XXHash64().Hash([]byte("abc")), 64)
	require.NoError(t, err)
	assert.Equal(t, xxhash.Sum64String("abc"), words[0])
}

func TestDigestWords_UsesTrailingBytes(t *testing.T) {
	sum := md5.Sum([]byte("aaa"))
	words, err := digestWords(sum[:], 16)
	require.NoError(t, err)
	assert.Equal(t, []uint64{uint64(sum[14])<<8 | uint64(sum[15])}, words)

	_, err = digestWords(sum[:], 136)
	assert.ErrorIs(t, err, ErrShortDigest)
}

func TestHasherName(t *testing.T) {
	assert.Equal(t, "md5", HasherName(MD5()))
	assert.Equal(t, "xxhash64", HasherName(XXHash64()))
	assert.Equal(t, "murmur3-128", HasherName(Murmur3()))
	assert.Equal(t, "fingerprint.HasherFunc", HasherName(HasherFunc(func(b []byte) []byte { return b })))
	assert.Len(t, Murmur3().Hash([]byte("x")), 16)
}

func TestCachedHasher(t *testing.T) {
	cached, err := NewCachedHasher(MD5(), 64)
	require.NoError(t, err)
	assert.Equal(t, "md5", HasherName(cached))

	opts := DefaultBuilderOptions()
	opts.Hasher = cached
	b, err := NewBuilder(nil, opts)
	require.NoError(t, err)

	plain, err := Build(Text("How are you"), 64)
	require.NoError(t, err)

	first, err := b.Build(Text("How are you"))
	require.NoError(t, err)
	second, err := b.Build(Text("How are you"))
	require.NoError(t, err)

	assert.True(t, plain.Equal(first))
	assert.True(t, plain.Equal(second))

	// six distinct windows plus the construction probe
	hits, misses := cached.Stats()
	assert.Equal(t, uint64(6), hits)
	assert.Equal(t, uint64(7), misses)

	_, err = NewCachedHasher(MD5(), 0)
	assert.ErrorIs(t, err, lru.ErrCapacity)
	assert.Contains(t, err.Error(), "digest cache")
}
