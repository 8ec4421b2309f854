package simdex

import (
	"bytes"

	"github.com/huandu/skiplist"

	"github.com/wodeyoulai/simdex/fingerprint"
)

// bucket holds the entries sharing one band value, ordered by entry key.
type bucket struct {
	skl *skiplist.SkipList
}

func newBucket() *bucket {
	return &bucket{skl: createSkl()}
}

func createSkl() *skiplist.SkipList {
	// LessThanFunc negates the result, so negate back for ascending order
	return skiplist.New(skiplist.LessThanFunc(func(k1, k2 interface{}) int {
		return -bytes.Compare(k1.([]byte), k2.([]byte))
	}))
}

// add inserts e and reports whether it was new.
func (b *bucket) add(e Entry) bool {
	key := entryKey(e.ID, e.Fingerprint)
	if b.skl.Get(key) != nil {
		return false
	}
	b.skl.Set(key, e)
	return true
}

// remove deletes the entry for (id, fp) and reports whether it was present.
func (b *bucket) remove(id string, fp fingerprint.Fingerprint) bool {
	return b.skl.Remove(entryKey(id, fp)) != nil
}

func (b *bucket) len() int {
	return b.skl.Len()
}

// each visits entries in key order until fn returns false.
func (b *bucket) each(fn func(e Entry) bool) {
	for elem := b.skl.Front(); elem != nil; elem = elem.Next() {
		if !fn(elem.Value.(Entry)) {
			return
		}
	}
}
