package fingerprint

// accumulator keeps one signed running sum per bit. Integral weights are
// summed exactly in ints; non-integral weights go to floats in feature order,
// so the final value does not depend on the batch size.
type accumulator struct {
	width  int
	ints   []int64
	floats []float64

	batchSize int
	batch     []pendingDigest
	partial   []int64

	batches  int
	bypassed int
}

type pendingDigest struct {
	words  []uint64
	weight int64
}

func newAccumulator(width, batchSize int) *accumulator {
	return &accumulator{
		width:     width,
		ints:      make([]int64, width),
		floats:    make([]float64, width),
		batchSize: batchSize,
		batch:     make([]pendingDigest, 0, batchSize),
		partial:   make([]int64, width),
	}
}

// push queues a digest for the current batch and folds the batch when full.
func (a *accumulator) push(words []uint64, weight int64) {
	a.batch = append(a.batch, pendingDigest{words: words, weight: weight})
	if len(a.batch) >= a.batchSize {
		a.flush()
	}
}

// flush sums the pending batch per bit and folds it into the running total.
func (a *accumulator) flush() {
	if len(a.batch) == 0 {
		return
	}
	clear(a.partial)
	for _, p := range a.batch {
		for i := 0; i < a.width; i++ {
			if p.words[i/64]>>uint(i%64)&1 == 1 {
				a.partial[i] += p.weight
			} else {
				a.partial[i] -= p.weight
			}
		}
	}
	for i, v := range a.partial {
		a.ints[i] += v
	}
	a.batch = a.batch[:0]
	a.batches++
}

// addInt folds a single integral feature, skipping the batch.
func (a *accumulator) addInt(words []uint64, weight int64) {
	for i := 0; i < a.width; i++ {
		if words[i/64]>>uint(i%64)&1 == 1 {
			a.ints[i] += weight
		} else {
			a.ints[i] -= weight
		}
	}
	a.bypassed++
}

func (a *accumulator) addFloat(words []uint64, weight float64) {
	for i := 0; i < a.width; i++ {
		if words[i/64]>>uint(i%64)&1 == 1 {
			a.floats[i] += weight
		} else {
			a.floats[i] -= weight
		}
	}
	a.bypassed++
}

// value sets bit i when its sum is >= 0; a tie counts as set.
func (a *accumulator) value() []uint64 {
	a.flush()
	words := make([]uint64, wordCount(a.width))
	for i := 0; i < a.width; i++ {
		if float64(a.ints[i])+a.floats[i] >= 0 {
			words[i/64] |= 1 << uint(i%64)
		}
	}
	return words
}
