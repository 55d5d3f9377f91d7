// Package authstate loads and persists browser storage state (cookies
// and per-origin storage) to and from disk.
package authstate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hollowroad/pwdrive/internal/objects"
	"github.com/hollowroad/pwdrive/internal/wire"
)

// fileMode is the restrictive permission required of any file holding
// session cookies.
const fileMode = 0600

// Load reads the storage-state file at path verbatim as JSON, handed
// to BrowserContext creation as an option. An empty path is not an
// error: it simply yields wire.Nil, the "no prior state" case.
func Load(path string) (wire.Value, error) {
	if path == "" {
		return wire.Nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return wire.Nil, &AuthLoadError{Path: path, Err: err}
	}
	v, err := wire.ParseValue(raw)
	if err != nil {
		return wire.Nil, &AuthLoadError{Path: path, Err: err}
	}
	return v, nil
}

// Save exports browserCtx's current storage state and writes it
// atomically (temp file + rename) to path, 0600.
func Save(ctx context.Context, browserCtx *objects.BrowserContext, path string) error {
	state, err := browserCtx.StorageState(ctx)
	if err != nil {
		return &AuthLoadError{Path: path, Err: err}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return &AuthLoadError{Path: path, Err: err}
	}
	if err := atomicWriteFile(path, raw); err != nil {
		return &AuthLoadError{Path: path, Err: err}
	}
	return nil
}

// Fingerprint returns the hex-encoded SHA-256 of the file at path, or
// the empty string if path is empty — used by the session broker's
// invalidation predicate to detect a changed auth file without
// keeping the contents around.
func Fingerprint(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", &AuthLoadError{Path: path, Err: err}
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// atomicWriteFile writes data to path via a temp file in the same
// directory followed by a rename, so a reader never observes a
// partially-written file. Mirrors the descriptor store's write path.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".authstate-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return closeErr
	}
	if err := os.Chmod(tmpPath, fileMode); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
