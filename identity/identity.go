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
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/intentlayer/intentlayer-sdk-go/internal/logger"
)

// Options configures GetOrCreateDID.
type Options struct {
	// AutoCreate generates and persists a new identity when none exists.
	// The zero value (false) requires an identity to already be present;
	// WithAutoCreate sets it to true.
	AutoCreate bool
	// KeyStorePath overrides DefaultKeyStorePath for this call.
	KeyStorePath string
	OrgID        string
	AgentLabel   string
}

func (o Options) storePath() (string, error) {
	if o.KeyStorePath != "" {
		return o.KeyStorePath, nil
	}
	return DefaultKeyStorePath()
}

// GetOrCreateDID returns the most recently created identity in the key
// store, or creates one if the store is empty and opts.AutoCreate is
// true; with AutoCreate false an empty store yields ErrNoIdentity.
func GetOrCreateDID(opts Options) (Identity, error) {
	path, err := opts.storePath()
	if err != nil {
		return Identity{}, err
	}
	store := sharedKeyStore(path)

	entries, err := store.List()
	if err != nil {
		return Identity{}, err
	}
	if len(entries) > 0 {
		return loadIdentity(store, entries[0].DID)
	}
	if !opts.AutoCreate {
		return Identity{}, ErrNoIdentity
	}
	return CreateNewIdentity(opts)
}

// WithAutoCreate returns Options with AutoCreate set to true, the usual
// entry point for GetOrCreateDID.
func WithAutoCreate(orgID, agentLabel string) Options {
	return Options{AutoCreate: true, OrgID: orgID, AgentLabel: agentLabel}
}

// CreateNewIdentity generates a fresh Ed25519 keypair, derives its
// did:key identifier and convenience Ethereum signer, and persists the
// encrypted result to the key store.
func CreateNewIdentity(opts Options) (Identity, error) {
	path, err := opts.storePath()
	if err != nil {
		return Identity{}, err
	}
	store := sharedKeyStore(path)

	priv, pub, err := GenerateEd25519Keypair()
	if err != nil {
		return Identity{}, err
	}
	did := DeriveDID(pub)
	now := time.Now().UTC()

	data := identityData{
		DID:           did,
		CreatedAt:     now,
		PrivateKeyB64: base64.StdEncoding.EncodeToString(priv),
		PublicKeyB64:  base64.StdEncoding.EncodeToString(pub),
		OrgID:         opts.OrgID,
		AgentLabel:    opts.AgentLabel,
	}
	if err := store.Add(did, data); err != nil {
		return Identity{}, err
	}

	signer, err := deriveEthereumSigner(priv.Seed())
	if err != nil {
		return Identity{}, err
	}

	logger.Info("identity: created new local identity", logger.String("did", Identity{DID: did}.LogSafe()))

	return Identity{
		DID:        did,
		Signer:     signer,
		PrivateKey: priv,
		PublicKey:  pub,
		CreatedAt:  now,
		OrgID:      opts.OrgID,
		AgentLabel: opts.AgentLabel,
	}, nil
}

// ListIdentities returns every DID stored at the given (or default) key
// store path, without decrypting any private key material.
func ListIdentities(keyStorePath string) ([]string, error) {
	path := keyStorePath
	var err error
	if path == "" {
		path, err = DefaultKeyStorePath()
		if err != nil {
			return nil, err
		}
	}
	store := sharedKeyStore(path)
	entries, err := store.List()
	if err != nil {
		return nil, err
	}
	dids := make([]string, 0, len(entries))
	for _, e := range entries {
		dids = append(dids, e.DID)
	}
	return dids, nil
}

// DeleteLocal removes a single DID from the key store, or the entire
// store file when did is empty.
func DeleteLocal(keyStorePath, did string) error {
	path := keyStorePath
	var err error
	if path == "" {
		path, err = DefaultKeyStorePath()
		if err != nil {
			return err
		}
	}
	store := sharedKeyStore(path)
	if did == "" {
		return store.Clear()
	}
	return store.Delete(did)
}

func loadIdentity(store *KeyStore, did string) (Identity, error) {
	data, err := store.Get(did)
	if err != nil {
		return Identity{}, err
	}
	priv, err := base64.StdEncoding.DecodeString(data.PrivateKeyB64)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: decode stored private key: %w", err)
	}
	pub, err := base64.StdEncoding.DecodeString(data.PublicKeyB64)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: decode stored public key: %w", err)
	}
	signer, err := deriveEthereumSigner(ed25519.PrivateKey(priv).Seed())
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		DID:        data.DID,
		Signer:     signer,
		PrivateKey: ed25519.PrivateKey(priv),
		PublicKey:  ed25519.PublicKey(pub),
		CreatedAt:  data.CreatedAt,
		OrgID:      data.OrgID,
		AgentLabel: data.AgentLabel,
	}, nil
}
