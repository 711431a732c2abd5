// Package keys supplies the confidentiality codec's key material at
// process start.
//
// Two strategies exist and the choice is deployment configuration:
//
//   - Ephemeral: a fresh random key per process lifetime. Documents sealed
//     under it become unreadable after restart. Acceptable only for
//     non-persistent deployments.
//   - File: a key generated once and persisted at a protected path, loaded
//     verbatim on every start. Required for any deployment expecting the
//     vault to survive restarts.
//
// Key material lives alongside the data it protects; this package does not
// defend against a compromised host.
package keys

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/traceguard/traceguard/internal/codec"
)

// Ephemeral generates a fresh random key for this process lifetime only.
func Ephemeral() ([]byte, error) {
	key := make([]byte, codec.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("keys: generate ephemeral: %w", err)
	}
	return key, nil
}

// LoadOrCreate returns the key stored at path, creating it on first use.
//
// A newly created key file is written 0600 via a temp-file rename so a
// crash mid-write never leaves a short key behind. An existing file must
// hold exactly codec.KeySize bytes; anything else is an error, never a
// silently regenerated key (that would orphan every stored document).
func LoadOrCreate(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != codec.KeySize {
			return nil, fmt.Errorf("keys: %s holds %d bytes, want %d", path, len(key), codec.KeySize)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("keys: read %s: %w", path, err)
	}

	key = make([]byte, codec.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("keys: generate: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("keys: create key directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".key-*")
	if err != nil {
		return nil, fmt.Errorf("keys: create temp key file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("keys: chmod key file: %w", err)
	}
	if _, err := tmp.Write(key); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("keys: write key file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("keys: close key file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, fmt.Errorf("keys: persist key file: %w", err)
	}

	return key, nil
}
