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

package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGatewayURLSecureSchemes(t *testing.T) {
	target, err := ParseGatewayURL("https://gateway.intentlayer.io")
	require.NoError(t, err)
	assert.Equal(t, "gateway.intentlayer.io:443", target.HostPort)
	assert.True(t, target.VerifyTLS)

	target, err = ParseGatewayURL("grpcs://gateway.intentlayer.io:9443")
	require.NoError(t, err)
	assert.Equal(t, "gateway.intentlayer.io:9443", target.HostPort)
	assert.True(t, target.VerifyTLS)
}

func TestParseGatewayURLInsecureLoopbackAllowed(t *testing.T) {
	target, err := ParseGatewayURL("http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", target.HostPort)
	assert.False(t, target.VerifyTLS)
}

func TestParseGatewayURLInsecureRemoteRejected(t *testing.T) {
	_, err := ParseGatewayURL("http://gateway.example.com")
	assert.Error(t, err)
}

func TestParseGatewayURLInsecureRemoteAllowedWithEscapeHatch(t *testing.T) {
	t.Setenv("INTENT_INSECURE_GW", "1")
	target, err := ParseGatewayURL("grpc://gateway.example.com:9000")
	require.NoError(t, err)
	assert.Equal(t, "gateway.example.com:9000", target.HostPort)
	assert.False(t, target.VerifyTLS)
}

func TestParseGatewayURLUnsupportedScheme(t *testing.T) {
	_, err := ParseGatewayURL("ftp://gateway.example.com")
	assert.Error(t, err)
}

func TestAuthMetadataApiKey(t *testing.T) {
	md, err := AuthMetadata("secret-key", "")
	require.NoError(t, err)
	assert.Equal(t, "Key secret-key", md["authorization"])
}

func TestAuthMetadataBearerToken(t *testing.T) {
	md, err := AuthMetadata("", "secret-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", md["authorization"])
}

func TestAuthMetadataMutualExclusion(t *testing.T) {
	_, err := AuthMetadata("key", "token")
	assert.ErrorIs(t, err, errMultipleCredentials)
}

func TestAuthMetadataNoneSet(t *testing.T) {
	md, err := AuthMetadata("", "")
	require.NoError(t, err)
	assert.Empty(t, md)
}

func TestAuthMetadataEnvFallback(t *testing.T) {
	t.Setenv("INTENT_API_KEY", "env-key")
	md, err := AuthMetadata("", "")
	require.NoError(t, err)
	assert.Equal(t, "Key env-key", md["authorization"])
}
