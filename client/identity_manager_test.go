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

package client

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentlayer/intentlayer-sdk-go/gateway"
	"github.com/intentlayer/intentlayer-sdk-go/identity"
)

// fakeLocker is an in-memory Locker double used so tests never touch
// the filesystem or a real Redis instance.
type fakeLocker struct {
	mu     sync.Mutex
	locked map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{locked: make(map[string]bool)}
}

func (f *fakeLocker) Lock(ctx context.Context, name string) (func(), error) {
	f.mu.Lock()
	f.locked[name] = true
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.locked, name)
		f.mu.Unlock()
	}, nil
}

func testIdentity(did string) identity.Identity {
	return identity.Identity{DID: did, PublicKey: []byte("pubkey-bytes-0123456789")}
}

func TestEnsureRegisteredSucceedsOnce(t *testing.T) {
	stub := gateway.NewStubTransport()
	require.NoError(t, stub.Initialize("stub", false))
	gw := gateway.NewClient(stub, nil)

	mgr := NewIdentityManager(testIdentity("did:key:zSomeLongEnoughDID1234"), gw, newFakeLocker(), 2)

	require.NoError(t, mgr.EnsureRegistered(context.Background()))
	assert.Equal(t, 1, stub.Calls)

	require.NoError(t, mgr.EnsureRegistered(context.Background()))
	assert.Equal(t, 1, stub.Calls, "second call must be a no-op")
}

func TestEnsureRegisteredQuotaExceededEscapes(t *testing.T) {
	stub := gateway.NewStubTransport()
	require.NoError(t, stub.Initialize("stub", false))
	gw := gateway.NewClient(stub, nil)

	id := testIdentity("did:key:zSomeLongEnoughDID1234")
	id.OrgID = "quota_exceeded"
	mgr := NewIdentityManager(id, gw, newFakeLocker(), 2)

	err := mgr.EnsureRegistered(context.Background())
	require.Error(t, err)
	var quotaErr *gateway.QuotaExceededError
	assert.ErrorAs(t, err, &quotaErr)
}

func TestEnsureRegisteredDegradesWithoutLocker(t *testing.T) {
	stub := gateway.NewStubTransport()
	require.NoError(t, stub.Initialize("stub", false))
	gw := gateway.NewClient(stub, nil)

	mgr := NewIdentityManager(testIdentity("did:key:zSomeLongEnoughDID5678"), gw, nil, 2)
	require.NoError(t, mgr.EnsureRegistered(context.Background()))
	assert.Equal(t, 1, stub.Calls)
}

func TestEnsureRegisteredConcurrentCallsSingleFlight(t *testing.T) {
	stub := gateway.NewStubTransport()
	require.NoError(t, stub.Initialize("stub", false))
	gw := gateway.NewClient(stub, nil)

	mgr := NewIdentityManager(testIdentity("did:key:zSomeLongEnoughDID9012"), gw, newFakeLocker(), 2)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, mgr.EnsureRegistered(context.Background()))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, stub.Calls)
}
