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
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisLockPrefix  = "intent:did:lock:"
	redisLockExpiry  = 30 * time.Second
	redisWaitTimeout = 10 * time.Second
	redisPollInterval = 50 * time.Millisecond
)

// RedisLocker coordinates a lock across multiple hosts via a Redis
// SETNX-style lock key with a 30s expiry, so a crashed holder cannot
// wedge the lock forever. Lock blocks up to 10s waiting for the key to
// free up before giving up.
type RedisLocker struct {
	rdb *redis.Client
}

// NewRedisLocker wraps an existing go-redis client.
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) Lock(ctx context.Context, name string) (func(), error) {
	key := redisLockPrefix + name
	token, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("lockutil: generate lock token: %w", err)
	}

	deadline := time.Now().Add(redisWaitTimeout)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, redisLockExpiry).Result()
		if err != nil {
			return nil, fmt.Errorf("lockutil: acquire redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lockutil: timed out waiting for redis lock %s", key)
		}
		select {
		case <-time.After(redisPollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return func() {
		l.release(key, token)
	}, nil
}

// release deletes the lock key only if it still holds our token, so a
// lock this holder already lost to expiry can't delete someone else's
// renewed lock.
func (l *RedisLocker) release(key, token string) {
	const script = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.rdb.Eval(ctx, script, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		// Best effort: the key will still expire on its own within
		// redisLockExpiry.
		_ = err
	}
}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
