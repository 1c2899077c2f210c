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

package envelope

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptSHA256Empty(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", PromptSHA256(""))
}

func TestCreateEnvelopeRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	env, err := Create("hello world", "gpt-4o", "openai.chat", "did:key:zTest", priv, "1000000000000000", CreateOptions{TimestampMs: 1711234567890})
	require.NoError(t, err)

	assert.Equal(t, "did:key:zTest", env.DID)
	assert.NotEmpty(t, env.SigEd25519)

	ok, err := env.Verify(pub)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateEnvelopeValidationRejectsEmptyFields(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	_, err = Create("x", "", "tool", "did:key:z", priv, "0", CreateOptions{})
	assert.ErrorIs(t, err, ErrEmptyField)
}

func TestCreateEnvelopeValidationRejectsBadDID(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	_, err = Create("x", "model", "tool", "not-a-did", priv, "0", CreateOptions{})
	assert.ErrorIs(t, err, ErrInvalidDID)
}

func TestHashStableAcrossMetadata(t *testing.T) {
	base := CallEnvelope{
		DID:          "did:key:zABC",
		ModelID:      "gpt-4o@2025-03-12",
		PromptSHA256: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		ToolID:       "openai.chat",
		TimestampMs:  1711234567890,
		StakeWei:     "10000000000000000",
		SigEd25519:   "AA",
	}
	withMeta := base
	withMeta.Metadata = map[string]any{"x": float64(1)}

	h1, err := base.Hash()
	require.NoError(t, err)
	h2, err := withMeta.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestHexHashFormat(t *testing.T) {
	env := CallEnvelope{
		DID:          "did:key:123",
		ModelID:      "gpt-4",
		PromptSHA256: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		ToolID:       "test",
		TimestampMs:  1234567890,
		StakeWei:     "1000000000000000",
		SigEd25519:   "abc123",
	}
	hexHash, err := env.HexHash()
	require.NoError(t, err)
	assert.True(t, len(hexHash) == 66)
	assert.Equal(t, "0x", hexHash[:2])
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	env, err := Create("hello", "model", "tool", "did:key:zTest", priv, "0", CreateOptions{TimestampMs: 1})
	require.NoError(t, err)

	env.ModelID = "tampered-model"
	ok, err := env.Verify(pub)
	require.NoError(t, err)
	assert.False(t, ok)
}
