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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubTransportSuccess(t *testing.T) {
	s := NewStubTransport()
	require.NoError(t, s.Initialize("stub://local", false))
	assert.True(t, s.IsAvailable())

	receipt, err := s.RegisterDid(context.Background(), DidDocument{DID: "did:key:zSomeValidIdentifier"}, 5*time.Second, nil)
	require.NoError(t, err)
	assert.True(t, receipt.Success)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
}

func TestStubTransportInvalidDid(t *testing.T) {
	s := NewStubTransport()
	require.NoError(t, s.Initialize("stub://local", false))

	receipt, err := s.RegisterDid(context.Background(), DidDocument{DID: "short"}, 5*time.Second, nil)
	require.NoError(t, err)
	assert.False(t, receipt.Success)
	assert.Equal(t, InvalidDID, receipt.ErrorCode)
}

func TestStubTransportAlreadyRegistered(t *testing.T) {
	s := NewStubTransport()
	require.NoError(t, s.Initialize("stub://local", false))

	receipt, err := s.RegisterDid(context.Background(), DidDocument{DID: "did:key:already_registered"}, 5*time.Second, nil)
	require.NoError(t, err)
	assert.False(t, receipt.Success)
	assert.Equal(t, AlreadyRegistered, receipt.ErrorCode)
}

func TestStubTransportQuotaExceeded(t *testing.T) {
	s := NewStubTransport()
	require.NoError(t, s.Initialize("stub://local", false))

	_, err := s.RegisterDid(context.Background(), DidDocument{DID: "did:key:zSomeValidIdentifier", OrgID: "Quota_Exceeded"}, 5*time.Second, nil)
	var quotaErr *QuotaExceededError
	assert.ErrorAs(t, err, &quotaErr)
}

func TestStubTransportCountsCalls(t *testing.T) {
	s := NewStubTransport()
	require.NoError(t, s.Initialize("stub://local", false))

	_, _ = s.RegisterDid(context.Background(), DidDocument{DID: "did:key:zSomeValidIdentifier"}, 5*time.Second, nil)
	_, _ = s.RegisterDid(context.Background(), DidDocument{DID: "did:key:zSomeValidIdentifier"}, 5*time.Second, nil)
	assert.Equal(t, 2, s.Calls)
}
