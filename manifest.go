package simdex

import (
	"encoding/json"
	"hash/crc32"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/wodeyoulai/simdex/tools/fileutil"
)

const manifestName = "MANIFEST"

// Manifest pins the parameters a DB directory was created with. Reopening
// with different ones would make the stored band keys meaningless.
type Manifest struct {
	Width     int    `json:"width"`
	Tolerance int    `json:"tolerance"`
	Hasher    string `json:"hasher"`
	Created   int64  `json:"created,omitempty"`
	Checksum  uint32 `json:"checksum,omitempty"`
}

func (m Manifest) checksum() uint32 {
	m.Checksum = 0
	data, _ := json.Marshal(m)
	return crc32.ChecksumIEEE(data)
}

// Check returns ErrManifestMismatch when want differs from m.
func (m Manifest) Check(want Manifest) error {
	if m.Width != want.Width || m.Tolerance != want.Tolerance || m.Hasher != want.Hasher {
		return errors.Wrapf(ErrManifestMismatch, "stored width=%d k=%d hasher=%s, got width=%d k=%d hasher=%s",
			m.Width, m.Tolerance, m.Hasher, want.Width, want.Tolerance, want.Hasher)
	}
	return nil
}

// WriteManifest stores m in dir, replacing any previous manifest atomically.
func WriteManifest(dir string, m Manifest) error {
	if m.Created == 0 {
		m.Created = time.Now().Unix()
	}
	m.Checksum = m.checksum()
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(filepath.Join(dir, manifestName), data)
}

// LoadManifest reads the manifest in dir. ok is false when there is none.
func LoadManifest(dir string) (m Manifest, ok bool, err error) {
	path := filepath.Join(dir, manifestName)
	if !fileutil.Exists(path) {
		return m, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return m, false, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, false, errors.Wrapf(ErrCorruptRecord, "manifest: %v", err)
	}
	if sum := m.checksum(); sum != m.Checksum {
		return m, false, errors.Wrapf(ErrCorruptRecord, "manifest checksum %08x, want %08x", sum, m.Checksum)
	}
	return m, true, nil
}
