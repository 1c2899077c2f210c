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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const filePollInterval = 20 * time.Millisecond

// FileLocker takes an advisory file lock under dir, one sidecar
// "<name>.lock" file per lock name. Suitable for single-host
// multi-process deployments; it does not coordinate across hosts.
type FileLocker struct {
	dir string
}

// NewFileLocker returns a FileLocker rooted at dir, creating it (mode
// 0700) if it does not exist.
func NewFileLocker(dir string) (*FileLocker, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("lockutil: create lock directory: %w", err)
	}
	return &FileLocker{dir: dir}, nil
}

// DefaultFileLockDir returns "<user config dir>/intentlayer", the
// default FileLocker root.
func DefaultFileLockDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("lockutil: resolve user config dir: %w", err)
	}
	return filepath.Join(base, "intentlayer"), nil
}

func (l *FileLocker) Lock(ctx context.Context, name string) (func(), error) {
	path := filepath.Join(l.dir, name+".lock")
	fl := flock.New(path)

	locked, err := fl.TryLockContext(ctx, filePollInterval)
	if err != nil {
		return nil, fmt.Errorf("lockutil: acquire file lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("lockutil: did not acquire file lock %s", path)
	}

	return func() {
		_ = fl.Unlock()
	}, nil
}
