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

// Package identity handles Ed25519 keypair generation, did:key derivation,
// and encrypted-at-rest storage of local agent identities.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/intentlayer/intentlayer-sdk-go/internal/logger"
	"github.com/intentlayer/intentlayer-sdk-go/internal/metrics"
)

// multicodecEd25519 is the multicodec prefix for an Ed25519 public key,
// per the did:key method specification.
var multicodecEd25519 = []byte{0xed, 0x01}

const (
	keyringService = "intentlayer-sdk"
	keyringKeyName = "master-key"
)

// Keyring abstracts an OS-native secret store. Production deployments that
// need a real backend (e.g. macOS Keychain, Windows Credential Manager,
// Secret Service on Linux) should provide their own implementation and
// call SetKeyring; none of the retrieval corpus this module was built from
// depends on a Go keyring library, so no such binding ships here (see
// DESIGN.md). The zero-value keyring always misses, matching the upstream
// SDK's "keyring access failed" fallback path.
type Keyring interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
}

type noopKeyring struct{}

func (noopKeyring) Get(service, key string) (string, error) {
	return "", fmt.Errorf("identity: no keyring backend configured")
}

func (noopKeyring) Set(service, key, value string) error {
	return fmt.Errorf("identity: no keyring backend configured")
}

var (
	keyringMu    sync.RWMutex
	keyringStore Keyring = noopKeyring{}
)

// SetKeyring installs a custom OS-keyring backend. Pass nil to restore the
// no-op default.
func SetKeyring(k Keyring) {
	keyringMu.Lock()
	defer keyringMu.Unlock()
	if k == nil {
		k = noopKeyring{}
	}
	keyringStore = k
}

func currentKeyring() Keyring {
	keyringMu.RLock()
	defer keyringMu.RUnlock()
	return keyringStore
}

// encryptionKeyCache caches the resolved master key for the process
// lifetime, mirroring the Python SDK's module-level cache.
var (
	encryptionKeyMu    sync.Mutex
	encryptionKeyCache []byte
)

// GenerateEd25519Keypair generates a new Ed25519 keypair.
func GenerateEd25519Keypair() (ed25519.PrivateKey, ed25519.PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("identity: generate ed25519 keypair: %w", err)
	}
	return priv, pub, nil
}

// DeriveDID derives a did:key identifier from a raw 32-byte Ed25519 public
// key: did:key:z<base58(0xED 0x01 || pubkey)>.
func DeriveDID(pub ed25519.PublicKey) string {
	encoded := make([]byte, 0, len(multicodecEd25519)+len(pub))
	encoded = append(encoded, multicodecEd25519...)
	encoded = append(encoded, pub...)
	return "did:key:z" + base58.Encode(encoded)
}

// GetEncryptionKey resolves the 32-byte master key used to encrypt stored
// identities. Resolution order: OS keyring, then INTENT_MASTER_KEY (only
// when CI=true), then a freshly generated key persisted to the keyring
// (also only when CI=true). The result is cached for the process lifetime.
func GetEncryptionKey() ([]byte, error) {
	encryptionKeyMu.Lock()
	defer encryptionKeyMu.Unlock()

	if encryptionKeyCache != nil {
		return encryptionKeyCache, nil
	}

	ci := os.Getenv("CI") == "true"

	if raw, err := currentKeyring().Get(keyringService, keyringKeyName); err == nil && raw != "" {
		key, decErr := base64.StdEncoding.DecodeString(raw)
		if decErr == nil && len(key) == secretbox.KeySize {
			encryptionKeyCache = key
			return key, nil
		}
		logger.Debug("identity: keyring returned an unusable master key, ignoring")
	} else if err != nil {
		logger.Debug("identity: keyring access failed", logger.Error(err))
	}

	if ci {
		if envKey := os.Getenv("INTENT_MASTER_KEY"); envKey != "" {
			key, err := base64.StdEncoding.DecodeString(envKey)
			if err != nil || len(key) != secretbox.KeySize {
				return nil, ErrInvalidMasterKey
			}
			encryptionKeyCache = key
			return key, nil
		}

		key := make([]byte, secretbox.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("identity: generate master key: %w", err)
		}
		encoded := base64.StdEncoding.EncodeToString(key)
		if err := currentKeyring().Set(keyringService, keyringKeyName, encoded); err != nil {
			logger.Warn("identity: set INTENT_MASTER_KEY environment variable for CI", logger.Error(err))
		}
		encryptionKeyCache = key
		return key, nil
	}

	return nil, ErrNoEncryptionKey
}

// resetEncryptionKeyCacheForTests clears the cached master key. Intended
// for use by this package's own tests only.
func resetEncryptionKeyCacheForTests() {
	encryptionKeyMu.Lock()
	defer encryptionKeyMu.Unlock()
	encryptionKeyCache = nil
}

// EncryptKeyData encrypts an arbitrary JSON-able payload using
// XSalsa20-Poly1305 (golang.org/x/crypto/nacl/secretbox), the same
// authenticated construction PyNaCl's SecretBox uses in the reference
// implementation this module was ported from. The returned string is
// base64(nonce ‖ ciphertext ‖ tag).
func EncryptKeyData(data any) (string, error) {
	start := time.Now()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("encrypt", "secretbox").Observe(time.Since(start).Seconds())
	}()

	plaintext, err := json.Marshal(data)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return "", fmt.Errorf("identity: marshal key data: %w", err)
	}

	key, err := GetEncryptionKey()
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return "", err
	}
	var keyArr [32]byte
	copy(keyArr[:], key)

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return "", fmt.Errorf("identity: generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &keyArr)
	metrics.CryptoOperations.WithLabelValues("encrypt", "secretbox").Inc()
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptKeyData reverses EncryptKeyData, failing loudly on a MAC
// mismatch (tampered or corrupted blob).
func DecryptKeyData(encrypted string, out any) error {
	start := time.Now()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("decrypt", "secretbox").Observe(time.Since(start).Seconds())
	}()

	key, err := GetEncryptionKey()
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return err
	}
	var keyArr [32]byte
	copy(keyArr[:], key)

	sealed, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return fmt.Errorf("identity: decode encrypted blob: %w", err)
	}
	if len(sealed) < 24 {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return ErrDecryptionFailed
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])

	plaintext, ok := secretbox.Open(nil, sealed[24:], &nonce, &keyArr)
	if !ok {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return ErrDecryptionFailed
	}

	if err := json.Unmarshal(plaintext, out); err != nil {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return fmt.Errorf("identity: unmarshal decrypted payload: %w", err)
	}
	metrics.CryptoOperations.WithLabelValues("decrypt", "secretbox").Inc()
	return nil
}
