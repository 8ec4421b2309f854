package simdex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wodeyoulai/simdex/fingerprint"
)

func TestBatch_CommitMatchesSequentialOps(t *testing.T) {
	seq := newDBHelper(t)
	seqDB := seq.open(nil)
	defer seqDB.Close()
	seq.loadScenario(seqDB)
	require.NoError(t, seqDB.Delete("1", fingerprint.Text(scenarioDocs["1"])))

	h := newDBHelper(t)
	db := h.open(nil)
	b := db.NewBatch()
	for _, id := range []string{"1", "2", "3", "4"} {
		require.NoError(t, b.Add(id, fingerprint.Text(scenarioDocs[id])))
	}
	require.NoError(t, b.Delete("1", fingerprint.Text(scenarioDocs["1"])))
	assert.Equal(t, 5, b.Len())
	assert.Zero(t, db.Index().Len(), "nothing applied before commit")

	require.NoError(t, b.Commit())
	assert.Equal(t, seqDB.Index().Entries(), db.Index().Entries())

	last, err := db.journal.LastIndex()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), last)

	// survives a reopen
	require.NoError(t, db.Close())
	db = h.open(nil)
	defer db.Close()
	assert.Equal(t, seqDB.Index().Entries(), db.Index().Entries())
}

func TestBatch_Closed(t *testing.T) {
	h := newDBHelper(t)
	db := h.open(nil)
	defer db.Close()

	b := db.NewBatch()
	require.NoError(t, b.Add("a", fingerprint.Text("a")))
	require.NoError(t, b.Commit())
	assert.ErrorIs(t, b.Commit(), ErrBatchClosed)
	assert.ErrorIs(t, b.Add("b", fingerprint.Text("b")), ErrBatchClosed)

	rb := db.NewBatch()
	require.NoError(t, rb.Add("c", fingerprint.Text("c")))
	rb.Rollback()
	assert.ErrorIs(t, rb.Commit(), ErrBatchClosed)
	assert.ErrorIs(t, rb.Delete("c", fingerprint.Text("c")), ErrBatchClosed)
	assert.Equal(t, 1, db.Index().Len())
}

func TestBatch_BadInputFailsAtStage(t *testing.T) {
	h := newDBHelper(t)
	db := h.open(nil)
	defer db.Close()

	b := db.NewBatch()
	err := b.Add("x", nil)
	assert.True(t, IsInputShapeError(err))
	assert.Zero(t, b.Len())

	require.NoError(t, b.Commit())
	assert.Zero(t, db.Index().Len())
}
