// Copyright (C) 2025 intentlayer
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/intentlayer/intentlayer-sdk-go/internal/logger"
)

const (
	keyStoreEnvVar   = "INTENT_KEY_STORE_PATH"
	keyStoreDirName  = ".intentlayer"
	keyStoreFileName = "keys.json"
	keyStoreVersion  = 1
	lockTimeout      = 10 * time.Second
)

// keyStoreFile is the on-disk shape of the key store: a map from DID to
// its encrypted blob plus unencrypted metadata, so List never needs the
// master key.
type keyStoreFile struct {
	Identities map[string]storedIdentity `json:"identities"`
}

// KeyStore is a file-backed, process- and host-wide store of local
// identities. All mutating operations are guarded both by an in-process
// mutex and an inter-process file lock, so concurrent SDK instances on
// the same host never corrupt the file.
type KeyStore struct {
	path string
	mu   sync.Mutex
}

var (
	keyStoreInst *KeyStore
	keyStorePath string
	keyStoreMu   sync.Mutex
)

// DefaultKeyStorePath resolves the key store path: INTENT_KEY_STORE_PATH
// if set, otherwise ~/.intentlayer/keys.json.
func DefaultKeyStorePath() (string, error) {
	if p := os.Getenv(keyStoreEnvVar); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("identity: resolve home directory: %w", err)
	}
	return filepath.Join(home, keyStoreDirName, keyStoreFileName), nil
}

// NewKeyStore opens (without yet creating) the key store at path.
func NewKeyStore(path string) *KeyStore {
	return &KeyStore{path: path}
}

// sharedKeyStore returns the process-wide KeyStore singleton for path,
// creating it on first use. Subsequent calls with a different path
// rebuild the singleton, mirroring the reference SDK's module-level
// cache keyed by store location.
func sharedKeyStore(path string) *KeyStore {
	keyStoreMu.Lock()
	defer keyStoreMu.Unlock()
	if keyStoreInst != nil && keyStorePath == path {
		return keyStoreInst
	}
	keyStoreInst = NewKeyStore(path)
	keyStorePath = path
	return keyStoreInst
}

func (s *KeyStore) ensureDir() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("identity: create key store directory: %w", err)
	}
	// Best effort: tighten permissions in case the directory pre-existed
	// with a looser mode. Windows ACLs aren't modeled here; hiding the
	// directory there would need golang.org/x/sys/windows, which this
	// module does not otherwise depend on (see DESIGN.md).
	_ = os.Chmod(dir, 0o700)
	return nil
}

func (s *KeyStore) lockPath() string {
	return s.path + ".lock"
}

// withLock runs fn while holding both the in-process mutex and an
// advisory inter-process file lock on a sidecar ".lock" file.
func (s *KeyStore) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return err
	}

	fl := flock.New(s.lockPath())
	deadline := time.Now().Add(lockTimeout)
	for {
		locked, err := fl.TryLock()
		if err != nil {
			return fmt.Errorf("identity: acquire key store lock: %w", err)
		}
		if locked {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("identity: timed out acquiring key store lock")
		}
		time.Sleep(20 * time.Millisecond)
	}
	defer func() {
		if err := fl.Unlock(); err != nil {
			logger.Warn("identity: failed to release key store lock", logger.Error(err))
		}
	}()

	return fn()
}

func (s *KeyStore) read() (keyStoreFile, error) {
	var file keyStoreFile
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		file.Identities = make(map[string]storedIdentity)
		return file, nil
	}
	if err != nil {
		return file, fmt.Errorf("identity: read key store: %w", err)
	}
	if len(data) == 0 {
		file.Identities = make(map[string]storedIdentity)
		return file, nil
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("identity: parse key store: %w", err)
	}
	if file.Identities == nil {
		file.Identities = make(map[string]storedIdentity)
	}
	return file, nil
}

// write persists file atomically: write to a temp file in the same
// directory, then rename over the target, so a crash mid-write never
// leaves a truncated store.
func (s *KeyStore) write(file keyStoreFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("identity: marshal key store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".keys-*.tmp")
	if err != nil {
		return fmt.Errorf("identity: create temp key store file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("identity: write temp key store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("identity: close temp key store file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("identity: chmod temp key store file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("identity: replace key store file: %w", err)
	}
	return nil
}

// Add stores an identity's encrypted blob, creating or overwriting the
// entry for did.
func (s *KeyStore) Add(did string, data identityData) error {
	return s.withLock(func() error {
		file, err := s.read()
		if err != nil {
			return err
		}
		encrypted, err := EncryptKeyData(data)
		if err != nil {
			return err
		}
		file.Identities[did] = storedIdentity{
			Encrypted: encrypted,
			Metadata:  storedIdentityMetadata{CreatedAt: data.CreatedAt},
			Version:   keyStoreVersion,
		}
		return s.write(file)
	})
}

// Get retrieves and decrypts the identity data stored for did.
func (s *KeyStore) Get(did string) (identityData, error) {
	var out identityData
	err := s.withLock(func() error {
		file, err := s.read()
		if err != nil {
			return err
		}
		entry, ok := file.Identities[did]
		if !ok {
			return ErrNotFound
		}
		if entry.Encrypted == "" {
			return ErrCorruptStore
		}
		return DecryptKeyData(entry.Encrypted, &out)
	})
	return out, err
}

// keyStoreEntry is a list-friendly summary of one stored identity.
type keyStoreEntry struct {
	DID       string
	CreatedAt time.Time
}

// List returns every stored DID and its creation time, newest first,
// without decrypting any private key material.
func (s *KeyStore) List() ([]keyStoreEntry, error) {
	var out []keyStoreEntry
	err := s.withLock(func() error {
		file, err := s.read()
		if err != nil {
			return err
		}
		out = make([]keyStoreEntry, 0, len(file.Identities))
		for did, entry := range file.Identities {
			out = append(out, keyStoreEntry{DID: did, CreatedAt: entry.Metadata.CreatedAt})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		return nil
	})
	return out, err
}

// Delete removes the entry for did. It is not an error to delete a DID
// that is not present.
func (s *KeyStore) Delete(did string) error {
	return s.withLock(func() error {
		file, err := s.read()
		if err != nil {
			return err
		}
		delete(file.Identities, did)
		return s.write(file)
	})
}

// Clear removes the key store file entirely, used by DeleteLocal when
// callers want to drop every identity at once.
func (s *KeyStore) Clear() error {
	return s.withLock(func() error {
		err := os.Remove(s.path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("identity: remove key store file: %w", err)
		}
		return nil
	})
}
