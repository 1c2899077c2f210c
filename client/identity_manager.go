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
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/intentlayer/intentlayer-sdk-go/gateway"
	"github.com/intentlayer/intentlayer-sdk-go/identity"
	"github.com/intentlayer/intentlayer-sdk-go/internal/logger"
	"github.com/intentlayer/intentlayer-sdk-go/lockutil"
)

const distributedLockTimeout = 10 * time.Second

// IdentityManager owns the single-flight "make sure my DID is
// registered on the Gateway" protocol SendIntent depends on: a local
// flag guards against redundant calls within one process, and a
// lockutil.Locker guards against redundant calls across processes
// sharing the same identity. Losing the distributed lock (no Redis,
// no filesystem access) degrades gracefully to local-only
// coordination rather than failing registration outright.
type IdentityManager struct {
	identity identity.Identity
	gw       *gateway.Client
	locker   lockutil.Locker
	schema   int

	mu         sync.Mutex
	registered bool

	sf singleflight.Group
}

// NewIdentityManager wires an identity to the Gateway client and
// distributed locker used to register it.
func NewIdentityManager(id identity.Identity, gw *gateway.Client, locker lockutil.Locker, schemaVersion int) *IdentityManager {
	return &IdentityManager{identity: id, gw: gw, locker: locker, schema: schemaVersion}
}

// EnsureRegistered registers the identity's DID on first use, then
// becomes a no-op. QuotaExceededError always propagates to the
// caller; every other registration failure is logged and swallowed,
// since a transient Gateway outage shouldn't block sending an intent
// whose DID may well already be registered.
func (m *IdentityManager) EnsureRegistered(ctx context.Context) error {
	m.mu.Lock()
	already := m.registered
	m.mu.Unlock()
	if already {
		return nil
	}

	_, err, _ := m.sf.Do(m.identity.DID, func() (any, error) {
		m.mu.Lock()
		already := m.registered
		m.mu.Unlock()
		if already {
			return nil, nil
		}

		unlock, lockErr := m.acquireDistributedLock(ctx)
		if lockErr != nil {
			logger.GetDefaultLogger().Warn("client: distributed registration lock unavailable, proceeding with in-process coordination only",
				logger.Error(lockErr))
		} else {
			defer unlock()
		}

		m.mu.Lock()
		already = m.registered
		m.mu.Unlock()
		if already {
			return nil, nil
		}

		_, regErr := m.gw.RegisterDid(ctx, m.identity.DID, gateway.RegisterOptions{
			PubKey:        m.identity.PublicKey,
			OrgID:         m.identity.OrgID,
			Label:         m.identity.AgentLabel,
			SchemaVersion: m.schema,
		})
		if regErr != nil {
			var quotaErr *gateway.QuotaExceededError
			if errors.As(regErr, &quotaErr) {
				return nil, regErr
			}
			logger.GetDefaultLogger().Warn("client: DID registration failed, continuing without confirmed registration",
				logger.String("did", m.identity.LogSafe()), logger.Error(regErr))
			return nil, nil
		}

		m.mu.Lock()
		m.registered = true
		m.mu.Unlock()
		return nil, nil
	})

	return err
}

func (m *IdentityManager) acquireDistributedLock(ctx context.Context) (func(), error) {
	if m.locker == nil {
		return func() {}, nil
	}
	lockCtx, cancel := context.WithTimeout(ctx, distributedLockTimeout)
	defer cancel()
	return m.locker.Lock(lockCtx, m.identity.DID)
}
