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
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// FromEnv builds a Locker according to INTENT_LOCK_STRATEGY ("file",
// the default, or "redis"). The redis strategy reads INTENT_REDIS_ADDR
// ("localhost:6379" default).
func FromEnv() (Locker, error) {
	switch Strategy(envOr("INTENT_LOCK_STRATEGY", string(StrategyFile))) {
	case StrategyRedis:
		addr := envOr("INTENT_REDIS_ADDR", "localhost:6379")
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		return NewRedisLocker(rdb), nil
	case StrategyFile, "":
		dir, err := DefaultFileLockDir()
		if err != nil {
			return nil, err
		}
		return NewFileLocker(dir)
	default:
		return nil, fmt.Errorf("lockutil: unknown INTENT_LOCK_STRATEGY %q", os.Getenv("INTENT_LOCK_STRATEGY"))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
