package ingest

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/campuscerts/cert-tracker/constants"
)

// Store writes upload bytes under the configured root, sharded by day:
// <root>/YYYYMMDD/user<account>_<unixnano>.<ext>. The nanosecond stamp keeps
// rapid repeat uploads from the same account from colliding.
type Store struct {
	Root string
}

// Save persists raw and returns the stored path plus the content hash used
// for the file record.
func (s *Store) Save(accountID, ext string, raw []byte, at time.Time) (string, []byte, error) {
	ext = constants.NormalizeExt(ext)
	dir := filepath.Join(s.Root, at.Format("20060102"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("user%s_%d.%s", accountID, at.UnixNano(), ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", nil, fmt.Errorf("write upload: %w", err)
	}

	sum := sha256.Sum256(raw)
	return path, sum[:], nil
}
