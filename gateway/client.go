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
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/intentlayer/intentlayer-sdk-go/internal/logger"
	"github.com/intentlayer/intentlayer-sdk-go/internal/metrics"
)

const (
	defaultMaxRetries  = 3
	defaultBackoffBase = 500 * time.Millisecond
	defaultGwTimeout   = 5 * time.Second
	jitterFraction     = 0.1
)

// Client wraps a Transport with the retry/backoff state machine, schema
// version defaulting, and quota-error rate limiting described for
// register_did. One Client is built per Gateway URL and is safe for
// concurrent use (the underlying transport is multiplexable).
type Client struct {
	transport Transport
	metadata  map[string]string
	quotaLog  *logger.RateLimiter
}

// NewClient wraps an already-initialized transport.
func NewClient(transport Transport, metadata map[string]string) *Client {
	return &Client{
		transport: transport,
		metadata:  metadata,
		quotaLog:  logger.NewRateLimiter(logger.GetDefaultLogger(), 60*time.Second, 100),
	}
}

// RegisterOptions configures RegisterDid.
type RegisterOptions struct {
	PubKey        []byte
	OrgID         string
	Label         string
	SchemaVersion int
	DocCID        string
	PayloadCID    string
	MaxRetries    int
	BackoffBase   time.Duration
	RetryTimeout  time.Duration
}

func (o RegisterOptions) resolve() RegisterOptions {
	if o.SchemaVersion == 0 {
		o.SchemaVersion = schemaVersionFromEnv()
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.BackoffBase == 0 {
		o.BackoffBase = defaultBackoffBase
	}
	if o.RetryTimeout == 0 {
		o.RetryTimeout = gwTimeoutFromEnv()
	}
	return o
}

func schemaVersionFromEnv() int {
	if v := os.Getenv("INTENT_SCHEMA_VERSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 2
}

func gwTimeoutFromEnv() time.Duration {
	if v := os.Getenv("INTENT_GW_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return defaultGwTimeout
}

// RegisterDid runs the registration retry state machine:
// ALREADY_REGISTERED is a successful no-op, DID_QUOTA_EXCEEDED
// always escapes immediately, other response-level errors are
// terminal, and transport-level errors are retried according to
// classifyTransportError's retryable bucket.
func (c *Client) RegisterDid(ctx context.Context, did string, opts RegisterOptions) (TxReceipt, error) {
	opts = opts.resolve()
	doc := DidDocument{
		DID:           did,
		PubKey:        opts.PubKey,
		OrgID:         opts.OrgID,
		Label:         opts.Label,
		SchemaVersion: opts.SchemaVersion,
		DocCID:        opts.DocCID,
		PayloadCID:    opts.PayloadCID,
	}

	var lastErr error
	attempts := opts.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		receipt, err := c.transport.RegisterDid(ctx, doc, opts.RetryTimeout, c.metadata)
		metrics.GatewayRequestDuration.WithLabelValues("RegisterDid", transportLabel(c.transport)).Observe(time.Since(start).Seconds())

		if err != nil {
			lastErr = err
			var quotaErr *QuotaExceededError
			if isQuotaExceeded(err, &quotaErr) {
				c.quotaLog.Warn("gateway: registration quota exceeded", logger.String("did", did))
				metrics.GatewayRegistrations.WithLabelValues("quota_exceeded").Inc()
				return TxReceipt{}, err
			}
			if !retryable(err) {
				metrics.GatewayRegistrations.WithLabelValues("failed").Inc()
				return TxReceipt{}, err
			}
			metrics.GatewayRetries.WithLabelValues(transportLabel(c.transport)).Inc()
			c.sleepBeforeRetry(ctx, attempt, opts.BackoffBase)
			continue
		}

		if receipt.Success {
			metrics.GatewayRegistrations.WithLabelValues("success").Inc()
			return receipt, nil
		}

		switch receipt.ErrorCode {
		case AlreadyRegistered:
			metrics.GatewayRegistrations.WithLabelValues("already_registered").Inc()
			return receipt, nil
		case DIDQuotaExceeded:
			c.quotaLog.Warn("gateway: registration quota exceeded", logger.String("did", did))
			metrics.GatewayRegistrations.WithLabelValues("quota_exceeded").Inc()
			return TxReceipt{}, newQuotaExceededError(did)
		case InvalidDID, InvalidDocCID, Unauthorized, InvalidPayload:
			metrics.GatewayRegistrations.WithLabelValues("failed").Inc()
			return TxReceipt{}, newResponseError(receipt.ErrorCode, receipt.Error)
		default:
			lastErr = newGatewayError(receipt.ErrorCode, receipt.Error, nil)
			metrics.GatewayRetries.WithLabelValues(transportLabel(c.transport)).Inc()
			c.sleepBeforeRetry(ctx, attempt, opts.BackoffBase)
		}
	}

	metrics.GatewayRegistrations.WithLabelValues("failed").Inc()
	return TxReceipt{}, lastErr
}

func (c *Client) sleepBeforeRetry(ctx context.Context, attempt int, base time.Duration) {
	delay := base * time.Duration(1<<uint(attempt-1))
	jitter := time.Duration(rand.Float64() * jitterFraction * float64(delay))
	select {
	case <-time.After(delay + jitter):
	case <-ctx.Done():
	}
}

func transportLabel(t Transport) string {
	switch t.(type) {
	case *ProtoTransport:
		return "proto"
	case *StubTransport:
		return "stub"
	default:
		return "unknown"
	}
}

func isQuotaExceeded(err error, target **QuotaExceededError) bool {
	if e, ok := err.(*QuotaExceededError); ok {
		*target = e
		return true
	}
	return false
}
