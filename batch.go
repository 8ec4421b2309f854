package simdex

import (
	"sync/atomic"

	"github.com/wodeyoulai/simdex/fingerprint"
)

// Batch stages adds and deletes. Commit journals them in one write and then
// applies them in the order they were staged.
type Batch struct {
	db      *DB
	records []Record
	closed  atomic.Bool
}

func newBatch(db *DB) *Batch {
	return &Batch{db: db}
}

// Add builds in right away, so a bad input fails here and not at Commit.
func (b *Batch) Add(id string, in fingerprint.Input) error {
	return b.stage(OpAdd, id, in)
}

func (b *Batch) Delete(id string, in fingerprint.Input) error {
	return b.stage(OpDelete, id, in)
}

func (b *Batch) stage(op Op, id string, in fingerprint.Input) error {
	if b.closed.Load() {
		return ErrBatchClosed
	}
	r, err := b.db.record(op, id, in)
	if err != nil {
		return err
	}
	b.records = append(b.records, r)
	return nil
}

// Len is the number of staged operations.
func (b *Batch) Len() int { return len(b.records) }

func (b *Batch) Commit() error {
	if b.closed.Load() {
		return ErrBatchClosed
	}
	defer b.closed.Store(true)

	if b.db.closed.Load() {
		return ErrClosed
	}
	if err := b.db.journal.AppendBatch(b.records); err != nil {
		b.db.metrics.operationErrors.Inc()
		return err
	}
	for _, r := range b.records {
		if err := b.db.apply(r); err != nil {
			return err
		}
	}
	b.db.metrics.batchSize.Observe(float64(len(b.records)))
	return nil
}

// Rollback discards the staged operations.
func (b *Batch) Rollback() {
	b.closed.Store(true)
	b.records = nil
}
