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

// Package pinner posts envelope payloads to a content-addressing pinning
// service and returns the resulting CID.
package pinner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/intentlayer/intentlayer-sdk-go/internal/logger"
	"github.com/intentlayer/intentlayer-sdk-go/internal/metrics"
)

const (
	timeout       = 30 * time.Second
	maxAttempts   = 3
	backoffBase   = 500 * time.Millisecond
	jitterFraction = 0.1
)

// PinningError wraps a non-retryable or retry-exhausted pinning failure.
type PinningError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *PinningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pinner: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pinner: %s", e.Message)
}

func (e *PinningError) Unwrap() error { return e.Cause }

// Client pins JSON payloads to a single pinner_url.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

// New returns a Client targeting baseURL (e.g. "https://pin.intentlayer.io").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger.GetDefaultLogger(),
	}
}

type pinResponse struct {
	CID string `json:"cid"`
}

// Pin POSTs payload as JSON to "<pinner_url>/pin" and returns the CID.
// 5xx responses are retried with exponential backoff; transport errors,
// 4xx responses and an exhausted retry budget return a PinningError
// without further attempts.
func (c *Client) Pin(ctx context.Context, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &PinningError{Message: "marshal payload", Cause: err}
	}

	var lastErr error
	start := time.Now()
	defer func() { metrics.PinDuration.Observe(time.Since(start).Seconds()) }()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		cid, retry, err := c.attempt(ctx, body)
		if err == nil {
			metrics.PinAttempts.WithLabelValues("success").Inc()
			return cid, nil
		}
		lastErr = err
		if !retry {
			metrics.PinAttempts.WithLabelValues("failed").Inc()
			return "", err
		}
		metrics.PinAttempts.WithLabelValues("retry").Inc()
		c.log.Warn("pinner: retrying after failed attempt", logger.Int("attempt", attempt), logger.Error(err))
		if attempt < maxAttempts {
			sleepBackoff(ctx, attempt)
		}
	}
	metrics.PinAttempts.WithLabelValues("failed").Inc()
	return "", lastErr
}

func (c *Client) attempt(ctx context.Context, body []byte) (cid string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pin", bytes.NewReader(body))
	if err != nil {
		return "", false, &PinningError{Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, &PinningError{Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", false, &PinningError{StatusCode: resp.StatusCode, Message: "read response body", Cause: readErr}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(contentType, "application/json") {
			c.log.Warn("pinner: unexpected content type", logger.String("content_type", contentType))
		}
		var parsed pinResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil || parsed.CID == "" {
			return "", false, &PinningError{StatusCode: resp.StatusCode, Message: "response missing cid", Cause: err}
		}
		return parsed.CID, false, nil
	case resp.StatusCode >= 500:
		return "", true, &PinningError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("server error: %s", string(respBody))}
	default:
		return "", false, &PinningError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("client error: %s", string(respBody))}
	}
}

func sleepBackoff(ctx context.Context, attempt int) {
	delay := backoffBase * time.Duration(1<<uint(attempt-1))
	jitter := time.Duration(rand.Float64() * jitterFraction * float64(delay))
	select {
	case <-time.After(delay + jitter):
	case <-ctx.Done():
	}
}

// RedactForLogging returns a copy of payload with prompt content and any
// sig_ed25519 field replaced by a "[REDACTED - N chars]" placeholder, for
// safe inclusion in log lines.
func RedactForLogging(payload map[string]any) map[string]any {
	redacted := make(map[string]any, len(payload))
	for k, v := range payload {
		switch k {
		case "prompt", "sig_ed25519":
			if s, ok := v.(string); ok {
				redacted[k] = fmt.Sprintf("[REDACTED - %d chars]", len(s))
				continue
			}
		}
		redacted[k] = v
	}
	return redacted
}
