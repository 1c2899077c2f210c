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

package lockutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLockerAcquireRelease(t *testing.T) {
	locker, err := NewFileLocker(t.TempDir())
	require.NoError(t, err)

	unlock, err := locker.Lock(context.Background(), "did:example:alice")
	require.NoError(t, err)
	unlock()
}

func TestFileLockerBlocksConcurrentHolder(t *testing.T) {
	locker, err := NewFileLocker(t.TempDir())
	require.NoError(t, err)

	unlock, err := locker.Lock(context.Background(), "did:example:bob")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "did:example:bob")
	assert.Error(t, err)
}

func TestFileLockerDifferentNamesDoNotBlock(t *testing.T) {
	locker, err := NewFileLocker(t.TempDir())
	require.NoError(t, err)

	unlockA, err := locker.Lock(context.Background(), "did:example:a")
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := locker.Lock(context.Background(), "did:example:b")
	require.NoError(t, err)
	unlockB()
}

func TestDefaultFileLockDirIncludesIntentlayer(t *testing.T) {
	dir, err := DefaultFileLockDir()
	require.NoError(t, err)
	assert.Contains(t, dir, "intentlayer")
}
