package simdex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_WriteLoad(t *testing.T) {
	dir := t.TempDir()

	_, ok, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.False(t, ok)

	want := Manifest{Width: 64, Tolerance: 3, Hasher: "md5"}
	require.NoError(t, WriteManifest(dir, want))

	got, ok, err := LoadManifest(dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 64, got.Width)
	assert.Equal(t, 3, got.Tolerance)
	assert.Equal(t, "md5", got.Hasher)
	assert.NotZero(t, got.Created)
	assert.NoError(t, got.Check(want))
}

func TestManifest_Check(t *testing.T) {
	stored := Manifest{Width: 64, Tolerance: 3, Hasher: "md5"}

	for _, other := range []Manifest{
		{Width: 128, Tolerance: 3, Hasher: "md5"},
		{Width: 64, Tolerance: 2, Hasher: "md5"},
		{Width: 64, Tolerance: 3, Hasher: "xxhash64"},
	} {
		err := stored.Check(other)
		assert.ErrorIs(t, err, ErrManifestMismatch)
		assert.True(t, IsConfigurationError(err))
	}
}

func TestManifest_ChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteManifest(dir, Manifest{Width: 64, Tolerance: 3, Hasher: "md5"}))

	path := filepath.Join(dir, manifestName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// a hand edit that keeps the JSON valid
	edited := []byte(string(data[:len(`{"width":`)]) + "32" + string(data[len(`{"width":64`):]))
	require.NoError(t, os.WriteFile(path, edited, 0644))

	_, _, err = LoadManifest(dir)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestManifest_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestName), []byte("{not json"), 0644))

	_, _, err := LoadManifest(dir)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}
