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
	"time"

	"github.com/intentlayer/intentlayer-sdk-go/ledger"
)

// Identity binds a did:key identifier to the signer capable of
// authorizing ledger transactions on its behalf. It is never mutated
// after creation: the did:key method has no key-rotation story, so a
// replacement identity is always a new DID.
type Identity struct {
	DID        string
	Signer     ledger.Signer
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	CreatedAt  time.Time
	OrgID      string
	AgentLabel string
}

// LogSafe returns a truncated form of the DID suitable for log lines,
// so full identifiers never land in application logs.
func (id Identity) LogSafe() string {
	if len(id.DID) <= 6 {
		return id.DID
	}
	return id.DID[:6] + "…"
}

// identityData is the plaintext payload that gets encrypted at rest.
type identityData struct {
	DID           string    `json:"did"`
	CreatedAt     time.Time `json:"created_at"`
	PrivateKeyB64 string    `json:"private_key_b64"`
	PublicKeyB64  string    `json:"public_key_b64"`
	OrgID         string    `json:"org_id,omitempty"`
	AgentLabel    string    `json:"agent_label,omitempty"`
}

// storedIdentity is one value in the key store's "identities" map: an
// encrypted blob plus unencrypted metadata so list/sort operations never
// need the master key.
type storedIdentity struct {
	Encrypted string                 `json:"encrypted"`
	Metadata  storedIdentityMetadata `json:"metadata"`
	Version   int                    `json:"version"`
}

type storedIdentityMetadata struct {
	CreatedAt time.Time `json:"created_at"`
}
