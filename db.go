package simdex

import (
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wodeyoulai/simdex/fingerprint"
	"github.com/wodeyoulai/simdex/tools/fileutil"
)

const journalDir = "journal"

// DB is an Index that survives restarts: every mutation is journaled before
// it reaches the index, and Open replays the journal.
type DB struct {
	lg      *zap.Logger
	dir     string
	builder *fingerprint.Builder
	idx     *Index
	journal *Journal
	metrics *dbMetrics
	closed  atomic.Bool
}

// Open opens or creates the DB in dir. registry may be nil.
func Open(lg *zap.Logger, dir string, registry prometheus.Registerer, opts Options) (*DB, error) {
	if lg == nil {
		lg = zap.NewNop()
	}
	builder, err := fingerprint.NewBuilder(lg, opts.Builder)
	if err != nil {
		return nil, err
	}
	idx, err := NewIndex(lg, nil, opts.indexOptions(registry))
	if err != nil {
		return nil, err
	}

	if fileutil.Exists(dir) && !fileutil.IsDirectory(dir) {
		return nil, errors.Errorf("%s is not a directory", dir)
	}
	if err := fileutil.EnsureDir(dir); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	want := Manifest{
		Width:     builder.Width(),
		Tolerance: idx.Tolerance(),
		Hasher:    fingerprint.HasherName(builder.Hasher()),
	}
	stored, ok, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := stored.Check(want); err != nil {
			return nil, err
		}
	} else if err := WriteManifest(dir, want); err != nil {
		return nil, errors.Wrap(err, "write manifest")
	}

	journal, err := OpenJournal(lg, filepath.Join(dir, journalDir), JournalOptions{
		NoSync:      opts.NoSync,
		SegmentSize: opts.SegmentSize,
	})
	if err != nil {
		return nil, err
	}

	db := &DB{
		lg:      lg,
		dir:     dir,
		builder: builder,
		idx:     idx,
		journal: journal,
		metrics: initDBMetrics(registry),
	}

	begin := time.Now()
	n, err := journal.Replay(func(_ uint64, r Record) error {
		return db.apply(r)
	})
	if err != nil {
		_ = journal.Close()
		return nil, errors.Wrap(err, "replay journal")
	}
	db.metrics.replayedRecords.Add(float64(n))
	lg.Info("db opened",
		zap.String("dir", dir),
		zap.Int("replayed", n),
		zap.Int("entries", idx.Len()),
		zap.Duration("took", time.Since(begin)),
	)
	return db, nil
}

func (db *DB) apply(r Record) error {
	switch r.Op {
	case OpAdd:
		return db.idx.Add(r.ID, r.Fingerprint)
	case OpDelete:
		return db.idx.Delete(r.ID, r.Fingerprint)
	default:
		return errors.Wrapf(ErrCorruptRecord, "op %d", r.Op)
	}
}

// record builds in and checks it fits the index before anything is written.
func (db *DB) record(op Op, id string, in fingerprint.Input) (Record, error) {
	fp, err := db.builder.Build(in)
	if err != nil {
		return Record{}, err
	}
	if err := db.idx.checkWidth(fp); err != nil {
		return Record{}, err
	}
	return Record{Op: op, ID: id, Fingerprint: fp}, nil
}

func (db *DB) write(op Op, id string, in fingerprint.Input) error {
	if db.closed.Load() {
		return ErrClosed
	}
	r, err := db.record(op, id, in)
	if err != nil {
		db.metrics.operationErrors.Inc()
		return err
	}
	if _, err := db.journal.Append(r); err != nil {
		db.metrics.operationErrors.Inc()
		return err
	}
	return db.apply(r)
}

// Add fingerprints in and stores it under id. Pass fingerprint.CopyFrom to
// store a fingerprint built elsewhere.
func (db *DB) Add(id string, in fingerprint.Input) error {
	begin := time.Now()
	defer func() {
		db.metrics.addLatency.Observe(time.Since(begin).Seconds())
		db.metrics.addTotal.Inc()
	}()
	return db.write(OpAdd, id, in)
}

func (db *DB) Delete(id string, in fingerprint.Input) error {
	begin := time.Now()
	defer func() {
		db.metrics.deleteLatency.Observe(time.Since(begin).Seconds())
		db.metrics.deleteTotal.Inc()
	}()
	return db.write(OpDelete, id, in)
}

// NearDups fingerprints in and queries the index.
func (db *DB) NearDups(in fingerprint.Input) ([]NearDup, error) {
	begin := time.Now()
	defer func() {
		db.metrics.queryLatency.Observe(time.Since(begin).Seconds())
		db.metrics.queryTotal.Inc()
	}()
	if db.closed.Load() {
		return nil, ErrClosed
	}
	fp, err := db.builder.Build(in)
	if err != nil {
		db.metrics.operationErrors.Inc()
		return nil, err
	}
	return db.idx.GetNearDups(fp)
}

// Clusters groups every stored entry into near-duplicate clusters.
func (db *DB) Clusters() ([][]string, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	return Clusters(db.idx, db.idx.Entries())
}

func (db *DB) Index() *Index { return db.idx }

func (db *DB) Builder() *fingerprint.Builder { return db.builder }

// NewBatch starts a batch of mutations committed with one journal write.
func (db *DB) NewBatch() *Batch {
	return newBatch(db)
}

// Close closes the journal. Calling it again is a no-op.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := db.journal.Close(); err != nil {
		return err
	}
	db.lg.Info("db closed", zap.String("dir", db.dir), zap.Int("entries", db.idx.Len()))
	return nil
}
