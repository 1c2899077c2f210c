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
	"strings"
	"sync"
	"time"
)

// StubTransport is the offline, deterministic Transport: it ships in
// production as the fallback when gRPC connectivity or TLS material is
// unavailable, and doubles as the SDK's own test fixture. It is not a
// mock of the Gateway — it is a standalone implementation of the same
// interface with fixed, documented responses.
type StubTransport struct {
	mu          sync.Mutex
	initialized bool
	target      string

	// Calls counts every RegisterDid invocation, for tests asserting
	// single-flight behavior.
	Calls int
}

// NewStubTransport returns a ready-to-initialize stub.
func NewStubTransport() *StubTransport {
	return &StubTransport{}
}

func (s *StubTransport) Initialize(target string, verifyTLS bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = target
	s.initialized = true
	return nil
}

func (s *StubTransport) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	return nil
}

func (s *StubTransport) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// RegisterDid implements the stub rules: short DIDs are rejected as
// invalid, a fixed sentinel DID simulates an already-registered DID, a
// fixed sentinel org simulates a quota failure, and everything else
// succeeds with a dummy transaction after a 100ms simulated delay.
func (s *StubTransport) RegisterDid(ctx context.Context, doc DidDocument, timeout time.Duration, md map[string]string) (TxReceipt, error) {
	s.mu.Lock()
	s.Calls++
	s.mu.Unlock()

	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return TxReceipt{}, newTimeoutError("stub transport: context deadline exceeded")
	}

	if len(doc.DID) < 10 {
		return TxReceipt{
			Success:   false,
			Error:     "invalid did",
			ErrorCode: InvalidDID,
		}, nil
	}
	if doc.DID == "did:key:already_registered" {
		return TxReceipt{
			Success:   false,
			Error:     "already registered",
			ErrorCode: AlreadyRegistered,
		}, nil
	}
	if strings.EqualFold(doc.OrgID, "quota_exceeded") {
		return TxReceipt{}, newQuotaExceededError(doc.DID)
	}

	return TxReceipt{
		Hash:      "0x" + strings.Repeat("0", 64),
		GasUsed:   21000,
		Success:   true,
		ErrorCode: UnknownUnspecified,
	}, nil
}
