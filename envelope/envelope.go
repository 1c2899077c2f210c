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

// Package envelope builds, canonicalizes, signs, and hashes the Call
// Envelope that is pinned and recorded on-chain for every intent.
package envelope

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// CallEnvelope is the bit-exact wire format recorded for a single
// intent. Field order here does not matter: canonicalJSON writes keys
// in sorted order before hashing or signing, which is what must stay
// byte-identical across platforms.
type CallEnvelope struct {
	DID          string         `json:"did"`
	ModelID      string         `json:"model_id"`
	ToolID       string         `json:"tool_id"`
	PromptSHA256 string         `json:"prompt_sha256"`
	TimestampMs  int64          `json:"timestamp_ms"`
	StakeWei     string         `json:"stake_wei"`
	SigEd25519   string         `json:"sig_ed25519,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

var (
	ErrEmptyField    = errors.New("envelope: required field is empty")
	ErrInvalidDID    = errors.New("envelope: did must start with \"did:\"")
	ErrInvalidPrompt = errors.New("envelope: prompt_sha256 must be a 64-character hex string")
)

var hexLower = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Validate checks the invariants spec'd for CallEnvelope: non-empty
// required strings, a "did:"-prefixed DID, and a well-formed
// prompt_sha256.
func (e CallEnvelope) Validate() error {
	if e.DID == "" || e.ModelID == "" || e.ToolID == "" || e.PromptSHA256 == "" {
		return ErrEmptyField
	}
	if !strings.HasPrefix(e.DID, "did:") {
		return ErrInvalidDID
	}
	if !hexLower.MatchString(e.PromptSHA256) {
		return ErrInvalidPrompt
	}
	return nil
}

// withoutMetadata returns a shallow copy with Metadata cleared, used by
// both signingBytes (which excludes metadata and the signature) and
// hashBytes (which excludes only metadata, per the note in §9: the signature itself stays
// in the hashed bytes for on-chain compatibility).
func (e CallEnvelope) withoutMetadata() CallEnvelope {
	e.Metadata = nil
	return e
}

// canonicalJSON serializes e as sorted-key, whitespace-free JSON: Go's
// encoding/json emits struct fields in declaration order with no extra
// whitespace, and the wire struct below declares its fields in ascending
// key order. Metadata is never part of the output.
func canonicalJSON(e CallEnvelope) ([]byte, error) {
	type wire struct {
		DID          string `json:"did"`
		ModelID      string `json:"model_id"`
		PromptSHA256 string `json:"prompt_sha256"`
		SigEd25519   string `json:"sig_ed25519,omitempty"`
		StakeWei     string `json:"stake_wei"`
		TimestampMs  int64  `json:"timestamp_ms"`
		ToolID       string `json:"tool_id"`
	}
	data, err := json.Marshal(wire{
		DID:          e.DID,
		ModelID:      e.ModelID,
		PromptSHA256: e.PromptSHA256,
		SigEd25519:   e.SigEd25519,
		StakeWei:     e.StakeWei,
		TimestampMs:  e.TimestampMs,
		ToolID:       e.ToolID,
	})
	if err != nil {
		return nil, fmt.Errorf("envelope: canonical JSON: %w", err)
	}
	return data, nil
}

// signingBytes returns the canonical JSON of e with both sig_ed25519 and
// metadata excluded — the bytes that get Ed25519-signed.
func signingBytes(e CallEnvelope) ([]byte, error) {
	e = e.withoutMetadata()
	e.SigEd25519 = ""
	return canonicalJSON(e)
}

// hashBytes returns the canonical JSON of e with only metadata excluded
// — sig_ed25519 stays in the hashed bytes, per the reference
// implementation's documented (if surprising) behavior that receipts
// must match bit-exactly.
func hashBytes(e CallEnvelope) ([]byte, error) {
	return canonicalJSON(e.withoutMetadata())
}

// Hash returns the keccak256 digest submitted on-chain.
func (e CallEnvelope) Hash() ([32]byte, error) {
	data, err := hashBytes(e)
	if err != nil {
		return [32]byte{}, err
	}
	return [32]byte(crypto.Keccak256(data)), nil
}

// HexHash returns Hash formatted as a "0x"-prefixed lowercase hex string.
func (e CallEnvelope) HexHash() (string, error) {
	h, err := e.Hash()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(h[:]), nil
}

// Verify checks SigEd25519 against pub over signingBytes(e).
func (e CallEnvelope) Verify(pub ed25519.PublicKey) (bool, error) {
	if e.SigEd25519 == "" {
		return false, nil
	}
	sig, err := base64.RawURLEncoding.DecodeString(e.SigEd25519)
	if err != nil {
		return false, fmt.Errorf("envelope: decode signature: %w", err)
	}
	msg, err := signingBytes(e)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, msg, sig), nil
}

// PromptSHA256 returns the lowercase hex SHA-256 digest of prompt,
// matching the prompt_sha256 field's definition.
func PromptSHA256(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// CreateOptions carries create_envelope's optional arguments.
type CreateOptions struct {
	TimestampMs int64
	Metadata    map[string]any
}

// Create builds, signs, and validates a CallEnvelope for one intent.
func Create(prompt, modelID, toolID, did string, priv ed25519.PrivateKey, stakeWei string, opts CreateOptions) (CallEnvelope, error) {
	ts := opts.TimestampMs
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	env := CallEnvelope{
		DID:          did,
		ModelID:      modelID,
		ToolID:       toolID,
		PromptSHA256: PromptSHA256(prompt),
		TimestampMs:  ts,
		StakeWei:     stakeWei,
		Metadata:     opts.Metadata,
	}

	msg, err := signingBytes(env)
	if err != nil {
		return CallEnvelope{}, err
	}
	sig := ed25519.Sign(priv, msg)
	env.SigEd25519 = base64.RawURLEncoding.EncodeToString(sig)

	if err := env.Validate(); err != nil {
		return CallEnvelope{}, err
	}
	return env, nil
}
