package simdex

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	pWal "github.com/tidwall/wal"
	"go.uber.org/zap"
)

type JournalOptions struct {
	NoSync      bool
	SegmentSize int
}

func DefaultJournalOptions() JournalOptions {
	return JournalOptions{SegmentSize: pWal.DefaultOptions.SegmentSize}
}

// Journal is an append-only log of index mutations.
type Journal struct {
	log       *pWal.Log
	lg        *zap.Logger
	mu        sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
}

func OpenJournal(lg *zap.Logger, path string, opts JournalOptions) (*Journal, error) {
	if lg == nil {
		lg = zap.NewNop()
	}
	wopts := *pWal.DefaultOptions
	wopts.NoSync = opts.NoSync
	if opts.SegmentSize > 0 {
		wopts.SegmentSize = opts.SegmentSize
	}
	l, err := pWal.Open(path, &wopts)
	if err != nil {
		return nil, errors.Wrapf(err, "open journal %s", path)
	}
	return &Journal{log: l, lg: lg}, nil
}

// Append writes one record and returns its index.
func (j *Journal) Append(r Record) (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed.Load() {
		return 0, ErrClosed
	}

	last, err := j.log.LastIndex()
	if err != nil {
		return 0, err
	}
	if err := j.log.Write(last+1, r.Marshal()); err != nil {
		return 0, errors.Wrap(err, "journal write")
	}
	return last + 1, nil
}

// AppendBatch writes records atomically with consecutive indexes.
func (j *Journal) AppendBatch(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed.Load() {
		return ErrClosed
	}

	last, err := j.log.LastIndex()
	if err != nil {
		return err
	}
	batch := &pWal.Batch{}
	for i, r := range records {
		batch.Write(last+uint64(i+1), r.Marshal())
	}
	if err := j.log.WriteBatch(batch); err != nil {
		return errors.Wrap(err, "journal write batch")
	}
	return nil
}

// Replay calls fn for every record in index order and returns how many were
// visited.
func (j *Journal) Replay(fn func(index uint64, r Record) error) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed.Load() {
		return 0, ErrClosed
	}
	first, err := j.log.FirstIndex()
	if err != nil {
		return 0, err
	}
	last, err := j.log.LastIndex()
	if err != nil {
		return 0, err
	}
	if last == 0 {
		return 0, nil
	}

	n := 0
	for i := first; i <= last; i++ {
		data, err := j.log.Read(i)
		if err != nil {
			return n, errors.Wrapf(err, "read journal index %d", i)
		}
		r, err := UnmarshalRecord(data)
		if err != nil {
			j.lg.Error("corrupt journal record", zap.Uint64("index", i), zap.Error(err))
			return n, errors.Wrapf(err, "journal index %d", i)
		}
		if err := fn(i, r); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// LastIndex is the index of the newest record, zero when empty.
func (j *Journal) LastIndex() (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.log.LastIndex()
}

func (j *Journal) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed.Load() {
		return ErrClosed
	}
	return j.log.Sync()
}

func (j *Journal) Close() error {
	var closeErr error
	j.closeOnce.Do(func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		j.closed.Store(true)
		if err := j.log.Close(); err != nil {
			j.lg.Error("failed to close journal", zap.Error(err))
			closeErr = errors.Wrap(err, "close journal")
		}
	})
	return closeErr
}
