package fingerprint

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/spaolacci/murmur3"

	"github.com/wodeyoulai/simdex/tools/lru"
)

// Hasher maps a token to a digest. It must be deterministic, and the digest
// must be at least width/8 bytes long; only the trailing width/8 bytes are
// used.
type Hasher interface {
	Hash(data []byte) []byte
}

// HasherFunc adapts a plain function to Hasher.
type HasherFunc func(data []byte) []byte

func (f HasherFunc) Hash(data []byte) []byte { return f(data) }

// Uint64Hasher adapts an integer hash: the value is serialized as 8
// big-endian bytes, so a builder narrower than 64 bits sees the low bits.
type Uint64Hasher func(data []byte) uint64

func (f Uint64Hasher) Hash(data []byte) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, f(data))
	return out
}

// HasherName returns h's registered name, or its Go type.
func HasherName(h Hasher) string {
	if n, ok := h.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", h)
}

type md5Hasher struct{}

func (md5Hasher) Hash(data []byte) []byte {
	sum := md5.Sum(data)
	return sum[:]
}

func (md5Hasher) Name() string { return "md5" }

// MD5 is the default hasher. It supports widths up to 128 bits.
func MD5() Hasher { return md5Hasher{} }

type xxHasher struct{}

func (xxHasher) Hash(data []byte) []byte {
	return Uint64Hasher(xxhash.Sum64).Hash(data)
}

func (xxHasher) Name() string { return "xxhash64" }

// XXHash64 is a fast non-cryptographic 64-bit hasher.
func XXHash64() Hasher { return xxHasher{} }

type murmurHasher struct{}

func (murmurHasher) Hash(data []byte) []byte {
	h1, h2 := murmur3.Sum128(data)
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[:8], h1)
	binary.BigEndian.PutUint64(out[8:], h2)
	return out
}

func (murmurHasher) Name() string { return "murmur3-128" }

// Murmur3 returns 128-bit digests.
func Murmur3() Hasher { return murmurHasher{} }

// CachedHasher memoizes digests of recently seen tokens. Shingled corpora
// repeat tokens heavily, so a small cache saves most hash calls.
type CachedHasher struct {
	inner Hasher
	cache *lru.LRUCache[[]byte]
}

func NewCachedHasher(inner Hasher, capacity int) (*CachedHasher, error) {
	c, err := lru.New[[]byte](capacity)
	if err != nil {
		return nil, errors.Wrap(err, "digest cache")
	}
	return &CachedHasher{inner: inner, cache: c}, nil
}

func (c *CachedHasher) Hash(data []byte) []byte {
	key := string(data)
	if d, ok := c.cache.Get(key); ok {
		return d
	}
	d := c.inner.Hash(data)
	c.cache.Put(key, d)
	return d
}

func (c *CachedHasher) Name() string { return HasherName(c.inner) }

// Stats returns the cache hit and miss counters.
func (c *CachedHasher) Stats() (hits, misses uint64) { return c.cache.Stats() }
