package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"caretalk/internal/domain"
)

const vaultFilename = "keystore.json"

// FileVault keeps secrets in a single JSON file. It mirrors the
// fail-open discipline of browser page storage: reads degrade to
// "absent", deletes are best-effort, and only writes surface an error
// (domain.ErrStorageUnavailable) so the caller can prompt a retry.
type FileVault struct {
	path string
	log  *slog.Logger
	mu   sync.Mutex
}

// NewFileVault returns a FileVault rooted at dir.
func NewFileVault(dir string, log *slog.Logger) *FileVault {
	return &FileVault{path: filepath.Join(dir, vaultFilename), log: log}
}

// Get returns the stored value for key. Any read or parse failure is
// logged and reported as absent, never as an error: a broken store must
// degrade to logged-out, not crash the client.
func (v *FileVault) Get(ctx context.Context, key string) (string, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, err := v.load()
	if err != nil {
		v.log.Warn("vault read failed, treating as absent", "key", key, "error", err)
		return "", false, nil
	}
	val, ok := m[key]
	return val, ok, nil
}

// Set stores value under key. Write failures surface as
// domain.ErrStorageUnavailable.
func (v *FileVault) Set(ctx context.Context, key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, err := v.load()
	if err != nil {
		// A corrupt file is replaced rather than propagated; the write
		// itself decides success.
		v.log.Warn("vault unreadable before write, replacing", "error", err)
		m = map[string]string{}
	}
	m[key] = value
	if err := v.flush(m); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes key. Failures are logged and swallowed; deleting an
// absent key is a no-op.
func (v *FileVault) Delete(ctx context.Context, key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, err := v.load()
	if err != nil {
		v.log.Warn("vault read failed during delete", "key", key, "error", err)
		return nil
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	if err := v.flush(m); err != nil {
		v.log.Warn("vault delete failed", "key", key, "error", err)
	}
	return nil
}

func (v *FileVault) load() (map[string]string, error) {
	m := map[string]string{}
	b, err := os.ReadFile(v.path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// flush writes the map via a temp file, then atomically replaces the target.
func (v *FileVault) flush(m map[string]string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(v.path)
	f, err := os.CreateTemp(dir, vaultFilename+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, v.path)
}

// Compile-time assertion that FileVault implements domain.Vault.
var _ domain.Vault = (*FileVault)(nil)
