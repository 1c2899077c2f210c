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

// Package lockutil provides cross-process advisory locks used to
// single-flight DID registration across multiple OS processes sharing
// the same identity. A single process still needs its own in-memory
// single-flight guard; this package only covers the inter-process
// case.
package lockutil

import "context"

// Locker acquires and releases a named advisory lock. Implementations
// must be safe to call from multiple processes concurrently; within a
// single process they need not be safe for concurrent use by multiple
// goroutines unless the concrete type says otherwise.
type Locker interface {
	// Lock blocks until the named lock is acquired or ctx is done. It
	// returns an Unlock function; callers must call it exactly once to
	// release the lock.
	Lock(ctx context.Context, name string) (unlock func(), err error)
}

// Strategy selects a Locker implementation by name, read from the
// INTENT_LOCK_STRATEGY environment variable ("file", the default, or
// "redis").
type Strategy string

const (
	StrategyFile  Strategy = "file"
	StrategyRedis Strategy = "redis"
)
