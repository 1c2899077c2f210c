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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyTransport fails the first N RegisterDid calls with a retryable
// connection error before succeeding.
type flakyTransport struct {
	mu         sync.Mutex
	failsLeft  int
	calls      int
	wantDoc    DidDocument
	lastDoc    DidDocument
	forceError error
}

func (f *flakyTransport) Initialize(string, bool) error { return nil }
func (f *flakyTransport) Close() error                  { return nil }
func (f *flakyTransport) IsAvailable() bool              { return true }

func (f *flakyTransport) RegisterDid(ctx context.Context, doc DidDocument, timeout time.Duration, md map[string]string) (TxReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastDoc = doc

	if f.forceError != nil {
		return TxReceipt{}, f.forceError
	}
	if f.failsLeft > 0 {
		f.failsLeft--
		return TxReceipt{}, newConnectionError("simulated connection failure", nil)
	}
	return TxReceipt{Success: true, Hash: "0xabc", GasUsed: 21000}, nil
}

func TestClientRegisterDidSucceedsFirstTry(t *testing.T) {
	transport := &flakyTransport{}
	client := NewClient(transport, nil)

	receipt, err := client.RegisterDid(context.Background(), "did:key:zAbc123", RegisterOptions{BackoffBase: time.Millisecond})
	require.NoError(t, err)
	assert.True(t, receipt.Success)
	assert.Equal(t, 1, transport.calls)
}

func TestClientRegisterDidRetriesOnConnectionError(t *testing.T) {
	transport := &flakyTransport{failsLeft: 2}
	client := NewClient(transport, nil)

	receipt, err := client.RegisterDid(context.Background(), "did:key:zAbc123", RegisterOptions{
		MaxRetries:  3,
		BackoffBase: time.Millisecond,
	})
	require.NoError(t, err)
	assert.True(t, receipt.Success)
	assert.Equal(t, 3, transport.calls)
}

func TestClientRegisterDidGivesUpAfterMaxRetries(t *testing.T) {
	transport := &flakyTransport{failsLeft: 100}
	client := NewClient(transport, nil)

	_, err := client.RegisterDid(context.Background(), "did:key:zAbc123", RegisterOptions{
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
	})
	assert.Error(t, err)
	assert.Equal(t, 3, transport.calls)
}

func TestClientRegisterDidAlreadyRegisteredIsSuccess(t *testing.T) {
	stub := NewStubTransport()
	require.NoError(t, stub.Initialize("stub://local", false))
	client := NewClient(stub, nil)

	receipt, err := client.RegisterDid(context.Background(), "did:key:already_registered", RegisterOptions{BackoffBase: time.Millisecond})
	require.NoError(t, err)
	assert.False(t, receipt.Success)
}

func TestClientRegisterDidQuotaExceededEscapes(t *testing.T) {
	stub := NewStubTransport()
	require.NoError(t, stub.Initialize("stub://local", false))
	client := NewClient(stub, nil)

	_, err := client.RegisterDid(context.Background(), "did:key:zAbc123", RegisterOptions{
		OrgID:       "quota_exceeded",
		BackoffBase: time.Millisecond,
	})
	var quotaErr *QuotaExceededError
	assert.ErrorAs(t, err, &quotaErr)
}

func TestClientRegisterDidTimeoutIsNonRetryable(t *testing.T) {
	transport := &flakyTransport{forceError: newTimeoutError("deadline exceeded")}
	client := NewClient(transport, nil)

	_, err := client.RegisterDid(context.Background(), "did:key:zAbc123", RegisterOptions{
		MaxRetries:  3,
		BackoffBase: time.Millisecond,
	})
	assert.Error(t, err)
	assert.Equal(t, 1, transport.calls)
}

func TestClientRegisterDidResponseErrorIsNonRetryable(t *testing.T) {
	transport := &flakyTransport{forceError: newResponseError(InvalidPayload, "bad payload")}
	client := NewClient(transport, nil)

	_, err := client.RegisterDid(context.Background(), "did:key:zAbc123", RegisterOptions{
		MaxRetries:  3,
		BackoffBase: time.Millisecond,
	})
	assert.Error(t, err)
	assert.Equal(t, 1, transport.calls)
}

func TestClientRegisterDidDefaultsSchemaVersion(t *testing.T) {
	transport := &flakyTransport{}
	client := NewClient(transport, nil)

	_, err := client.RegisterDid(context.Background(), "did:key:zAbc123", RegisterOptions{BackoffBase: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 2, transport.lastDoc.SchemaVersion)
}
