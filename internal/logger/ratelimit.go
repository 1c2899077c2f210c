package logger

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// RateLimiter suppresses repeated log lines that share the same level
// and message within a TTL window, so a hot error path can't flood
// output. It wraps a Logger rather than replacing it.
type RateLimiter struct {
	logger Logger
	mu     sync.Mutex
	seen   *lru.LRU[string, struct{}]
}

// NewRateLimiter wraps logger so that duplicate (level, message) pairs
// are dropped for ttl after the first occurrence. maxEntries bounds the
// distinct keys tracked at once.
func NewRateLimiter(logger Logger, ttl time.Duration, maxEntries int) *RateLimiter {
	return &RateLimiter{
		logger: logger,
		seen:   lru.NewLRU[string, struct{}](maxEntries, nil, ttl),
	}
}

func (r *RateLimiter) allow(level Level, msg string) bool {
	key := fmt.Sprintf("%s:%s", level, msg)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen.Get(key); ok {
		return false
	}
	r.seen.Add(key, struct{}{})
	return true
}

// Debug logs msg at debug level, subject to rate limiting.
func (r *RateLimiter) Debug(msg string, fields ...Field) {
	if r.allow(DebugLevel, msg) {
		r.logger.Debug(msg, fields...)
	}
}

// Info logs msg at info level, subject to rate limiting.
func (r *RateLimiter) Info(msg string, fields ...Field) {
	if r.allow(InfoLevel, msg) {
		r.logger.Info(msg, fields...)
	}
}

// Warn logs msg at warn level, subject to rate limiting.
func (r *RateLimiter) Warn(msg string, fields ...Field) {
	if r.allow(WarnLevel, msg) {
		r.logger.Warn(msg, fields...)
	}
}

// Error logs msg at error level, subject to rate limiting.
func (r *RateLimiter) Error(msg string, fields ...Field) {
	if r.allow(ErrorLevel, msg) {
		r.logger.Error(msg, fields...)
	}
}

// Fatal always logs and exits; rate limiting a fatal message would just
// hide the exit, so it passes straight through.
func (r *RateLimiter) Fatal(msg string, fields ...Field) {
	r.logger.Fatal(msg, fields...)
}
