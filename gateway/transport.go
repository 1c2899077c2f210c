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
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Transport is the pluggable capability RegisterDid is built on. Proto
// is the real gRPC implementation; Stub is a deterministic offline
// double that ships in production as the fallback when gRPC
// connectivity or TLS material is unavailable.
type Transport interface {
	Initialize(target string, verifyTLS bool) error
	RegisterDid(ctx context.Context, doc DidDocument, timeout time.Duration, md map[string]string) (TxReceipt, error)
	Close() error
	IsAvailable() bool
}

const (
	keepaliveTime    = 30 * time.Second
	keepaliveTimeout = 10 * time.Second
	maxMessageSize   = 10 << 20 // 10 MiB
)

// ParsedTarget is the result of applying the URL & TLS policy to a
// configured Gateway URL.
type ParsedTarget struct {
	HostPort  string
	VerifyTLS bool
}

// ParseGatewayURL applies the scheme/host policy from the module's
// transport design: https/grpcs always allowed; http/grpc only for
// loopback hosts or when the insecure escape hatches are set.
func ParseGatewayURL(raw string) (ParsedTarget, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ParsedTarget{}, fmt.Errorf("gateway: invalid URL %q: %w", raw, err)
	}

	scheme := strings.ToLower(u.Scheme)
	var secure bool
	switch scheme {
	case "https", "grpcs":
		secure = true
	case "http", "grpc":
		secure = false
	default:
		return ParsedTarget{}, fmt.Errorf("gateway: unsupported scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if !secure && !isLoopback(host) && !insecureAllowed() {
		return ParsedTarget{}, fmt.Errorf("gateway: insecure scheme %q only allowed for loopback hosts or with INTENT_INSECURE_GW/INTENT_SKIP_TLS_VERIFY set", u.Scheme)
	}

	port := u.Port()
	if port == "" {
		if secure {
			port = "443"
		} else {
			port = "80"
		}
	}

	return ParsedTarget{
		HostPort:  net.JoinHostPort(host, port),
		VerifyTLS: secure,
	}, nil
}

func isLoopback(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func insecureAllowed() bool {
	return os.Getenv("INTENT_INSECURE_GW") == "1" || strings.EqualFold(os.Getenv("INTENT_SKIP_TLS_VERIFY"), "true")
}

// AuthMetadata resolves the authorization header value from explicit
// arguments or their environment-variable fallbacks. Exactly one of
// apiKey/bearerToken (explicit or from env) may end up set.
func AuthMetadata(apiKey, bearerToken string) (map[string]string, error) {
	apiKey = strings.TrimSpace(apiKey)
	bearerToken = strings.TrimSpace(bearerToken)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("INTENT_API_KEY"))
	}
	if bearerToken == "" {
		bearerToken = strings.TrimSpace(os.Getenv("INTENT_BEARER_TOKEN"))
	}

	if apiKey != "" && bearerToken != "" {
		return nil, errMultipleCredentials
	}
	if apiKey != "" {
		return map[string]string{"authorization": "Key " + apiKey}, nil
	}
	if bearerToken != "" {
		return map[string]string{"authorization": "Bearer " + bearerToken}, nil
	}
	return map[string]string{}, nil
}

var (
	caCacheMu sync.Mutex
	caCache   = map[string][]byte{}
)

// loadCACertPool builds a cert pool honoring INTENT_GATEWAY_CA,
// INTENT_GATEWAY_APPEND_CA, and INTENT_GATEWAY_STRICT_CA. Returns nil to
// mean "use Go's default system pool" (no custom CA configured, or a
// non-strict failure that falls back to defaults).
func loadCACertPool() (*x509.CertPool, error) {
	caPath := os.Getenv("INTENT_GATEWAY_CA")
	if caPath == "" {
		return nil, nil
	}

	strict := os.Getenv("INTENT_GATEWAY_STRICT_CA") == "1"
	appendMode := os.Getenv("INTENT_GATEWAY_APPEND_CA") == "1"

	cacheKey := caPath + "|" + fmt.Sprint(appendMode)
	caCacheMu.Lock()
	cached, ok := caCache[cacheKey]
	caCacheMu.Unlock()

	var combined []byte
	if ok {
		combined = cached
	} else {
		custom, err := os.ReadFile(caPath)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("gateway: load custom CA: %w", err)
			}
			return nil, nil
		}
		combined = custom

		caCacheMu.Lock()
		caCache[cacheKey] = combined
		caCacheMu.Unlock()
	}

	// In append mode the pool starts from the system roots (Go's
	// x509.CertPool has no way to export their source PEM bytes, so the
	// "system_ca ‖ custom_ca" concatenation from the spec is realized by
	// seeding the pool from the system roots and then appending the
	// custom CA's PEM bytes, rather than concatenating raw bytes).
	pool := x509.NewCertPool()
	if appendMode {
		if sysPool, err := x509.SystemCertPool(); err == nil && sysPool != nil {
			pool = sysPool.Clone()
		}
	}
	if !pool.AppendCertsFromPEM(combined) {
		if strict {
			return nil, fmt.Errorf("gateway: custom CA at %s contains no usable certificates", caPath)
		}
		return nil, nil
	}
	return pool, nil
}

// tlsConfig builds the *tls.Config a proto transport channel should use
// for a secure target, honoring the custom CA policy above.
func tlsConfig() (*tls.Config, error) {
	pool, err := loadCACertPool()
	if err != nil {
		return nil, err
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
