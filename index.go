// Package simdex indexes SimHash fingerprints for near-duplicate lookup.
//
// An Index with tolerance k cuts every W-bit fingerprint into k+1 bands. Two
// fingerprints at Hamming distance at most k differ in at most k bands, so
// they agree exactly on at least one band and meet in that band's bucket. A
// query therefore only probes k+1 buckets and verifies the true distance of
// what it finds there.
//
// Index, like the fingerprint builder, does no locking of its own.
package simdex

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wodeyoulai/simdex/fingerprint"
)

// NearDup is one query result. When an id is stored under several
// fingerprints the smallest distance is reported.
type NearDup struct {
	ID       string
	Distance int
}

type Index struct {
	lg      *zap.Logger
	opts    IndexOptions
	bands   []band
	buckets []map[string]*bucket // one map per band, created lazily
	size    int
	metrics *indexMetrics
}

// NewIndex builds an index over entries. Progress is logged every
// ProgressInterval entries.
func NewIndex(lg *zap.Logger, entries []Entry, opts IndexOptions) (*Index, error) {
	if lg == nil {
		lg = zap.NewNop()
	}
	opts, err := opts.validate()
	if err != nil {
		return nil, err
	}

	idx := &Index{
		lg:      lg,
		opts:    opts,
		bands:   layoutBands(opts.Width, opts.Tolerance),
		buckets: make([]map[string]*bucket, opts.Tolerance+1),
		metrics: initIndexMetrics(opts.Registerer),
	}
	for i := range idx.buckets {
		idx.buckets[i] = make(map[string]*bucket)
	}

	total := len(entries)
	if total > 0 {
		lg.Info("initializing index", zap.Int("entries", total), zap.Int("width", opts.Width), zap.Int("k", opts.Tolerance))
	}
	for i, e := range entries {
		if err := idx.Add(e.ID, e.Fingerprint); err != nil {
			return nil, errors.Wrapf(err, "entry %d (%s)", i, e.ID)
		}
		if (i+1)%opts.ProgressInterval == 0 {
			lg.Info("index build progress", zap.Int("done", i+1), zap.Int("total", total))
		}
	}
	idx.metrics.bulkLoadedTotal.Add(float64(total))
	return idx, nil
}

func (idx *Index) Width() int { return idx.opts.Width }

func (idx *Index) Tolerance() int { return idx.opts.Tolerance }

// Bands returns the bit width of each band.
func (idx *Index) Bands() []int {
	out := make([]int, len(idx.bands))
	for i, b := range idx.bands {
		out[i] = b.width()
	}
	return out
}

// Len is the number of distinct (id, fingerprint) pairs.
func (idx *Index) Len() int { return idx.size }

func (idx *Index) checkWidth(fp fingerprint.Fingerprint) error {
	if fp.Width() != idx.opts.Width {
		return errors.Wrapf(fingerprint.ErrWidthMismatch, "fingerprint is %d bits, index is %d", fp.Width(), idx.opts.Width)
	}
	return nil
}

// Add inserts (id, fp) into one bucket per band. Adding a pair that is
// already present changes nothing.
func (idx *Index) Add(id string, fp fingerprint.Fingerprint) error {
	if err := idx.checkWidth(fp); err != nil {
		return err
	}
	e := Entry{ID: id, Fingerprint: fp}
	added := false
	for i, b := range idx.bands {
		key := b.key(fp)
		bk, ok := idx.buckets[i][key]
		if !ok {
			bk = newBucket()
			idx.buckets[i][key] = bk
		}
		if bk.add(e) && i == 0 {
			added = true
		}
	}
	if added {
		idx.size++
		idx.metrics.entries.Set(float64(idx.size))
	}
	return nil
}

// Delete removes (id, fp) from every band bucket. Deleting an absent pair is
// a no-op.
func (idx *Index) Delete(id string, fp fingerprint.Fingerprint) error {
	if err := idx.checkWidth(fp); err != nil {
		return err
	}
	removed := false
	for i, b := range idx.bands {
		bk, ok := idx.buckets[i][b.key(fp)]
		if !ok {
			continue
		}
		if bk.remove(id, fp) && i == 0 {
			removed = true
		}
	}
	if removed {
		idx.size--
		idx.metrics.entries.Set(float64(idx.size))
	}
	return nil
}

// GetNearDups returns every stored id within Tolerance of q, ordered by
// distance and then id.
func (idx *Index) GetNearDups(q fingerprint.Fingerprint) ([]NearDup, error) {
	if err := idx.checkWidth(q); err != nil {
		return nil, err
	}

	best := make(map[string]int)
	candidates := 0
	for i, b := range idx.bands {
		key := b.key(q)
		bk, ok := idx.buckets[i][key]
		if !ok {
			continue
		}
		if n := bk.len(); n > idx.opts.BigBucketSize {
			idx.lg.Warn("big bucket found", zap.Int("band", i), zap.String("key", key), zap.Int("len", n))
			idx.metrics.bigBucketTotal.Inc()
		}
		var derr error
		bk.each(func(e Entry) bool {
			candidates++
			d, err := q.Distance(e.Fingerprint)
			if err != nil {
				derr = err
				return false
			}
			if d > idx.opts.Tolerance {
				return true
			}
			if prev, seen := best[e.ID]; !seen || d < prev {
				best[e.ID] = d
			}
			return true
		})
		if derr != nil {
			return nil, derr
		}
	}

	out := make([]NearDup, 0, len(best))
	for id, d := range best {
		out = append(out, NearDup{ID: id, Distance: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})

	idx.metrics.queryCandidates.Observe(float64(candidates))
	idx.metrics.queryMatches.Observe(float64(len(out)))
	return out, nil
}

// BucketCount is the number of non-empty buckets across all bands.
func (idx *Index) BucketCount() int {
	n := 0
	for _, m := range idx.buckets {
		for _, bk := range m {
			if bk.len() > 0 {
				n++
			}
		}
	}
	return n
}

// Entries lists every stored pair, ordered by id and then fingerprint.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, 0, idx.size)
	for _, bk := range idx.buckets[0] {
		bk.each(func(e Entry) bool {
			out = append(out, e)
			return true
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Fingerprint.Hex() < out[j].Fingerprint.Hex()
	})
	return out
}
