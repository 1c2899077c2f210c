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

// Package jwt validates the bearer tokens a gateway presents at
// registration time, with different strictness depending on which tier
// of environment the SDK believes it's running in. It does not issue
// tokens; that is the gateway's job.
package jwt

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/intentlayer/intentlayer-sdk-go/internal/logger"
)

// Tier controls how strictly a token is validated.
type Tier string

const (
	// TierProduction enforces signature verification with a single
	// allowed algorithm (HS256) and a required secret.
	TierProduction Tier = "production"
	// TierTest allows a broader algorithm set, verifies HMAC signatures
	// opportunistically when a secret is present, and otherwise falls
	// back to an unverified-but-well-formed decode.
	TierTest Tier = "test"
	// TierDevelopment skips both signature and expiration checks.
	TierDevelopment Tier = "development"
)

// unsafeAlgorithms are rejected before any tier-specific logic runs,
// regardless of configuration: "none" and an empty alg both mean "no
// signature", which is never acceptable for a bearer token.
var unsafeAlgorithms = map[string]bool{"none": true, "": true}

var defaultTestDevAlgorithms = []string{
	"HS256", "HS384", "HS512",
	"RS256", "RS384", "RS512",
	"ES256", "ES384", "ES512",
}

var (
	// ErrEmptyToken is returned for an empty token string.
	ErrEmptyToken = errors.New("jwt: empty token")
	// ErrUnsafeAlgorithm is returned when the token's alg header is
	// "none" or empty.
	ErrUnsafeAlgorithm = errors.New("jwt: unsafe signing algorithm")
	// ErrAlgorithmNotAllowed is returned when alg is safe but not in
	// the tier's allowed set.
	ErrAlgorithmNotAllowed = errors.New("jwt: algorithm not allowed for this environment tier")
	// ErrSecretRequired is returned in production when no secret is
	// configured.
	ErrSecretRequired = errors.New("jwt: production tier requires a signing secret")
	// ErrInvalidToken covers malformed tokens and signature/claims
	// failures from the underlying library.
	ErrInvalidToken = errors.New("jwt: token validation failed")
)

// EnvironmentTier reads INTENT_ENV_TIER and normalizes it to one of the
// three Tier values, defaulting (and falling back on anything
// unrecognized) to TierProduction, the safest option.
func EnvironmentTier() Tier {
	raw := strings.ToLower(os.Getenv("INTENT_ENV_TIER"))
	switch raw {
	case "", "prod", "production":
		return TierProduction
	case "test", "testing", "qa":
		return TierTest
	case "dev", "development", "local":
		return TierDevelopment
	default:
		logger.Warn("jwt: unknown environment tier, defaulting to production", logger.String("tier", raw))
		return TierProduction
	}
}

// Secret reads the configured JWT signing secret from INTENT_JWT_SECRET.
func Secret() string {
	return os.Getenv("INTENT_JWT_SECRET")
}

// Options configures VerifyToken. The zero value resolves Tier and
// Secret from the environment and uses the tier's default algorithm
// allowlist.
type Options struct {
	Tier              Tier
	Secret            string
	AllowedAlgorithms []string
}

func (o Options) resolve() Options {
	if o.Tier == "" {
		o.Tier = EnvironmentTier()
	}
	if o.Secret == "" {
		o.Secret = Secret()
	}
	if o.AllowedAlgorithms == nil {
		switch o.Tier {
		case TierProduction:
			o.AllowedAlgorithms = []string{"HS256"}
		default:
			o.AllowedAlgorithms = defaultTestDevAlgorithms
		}
	}
	return o
}

func algorithmAllowed(alg string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, alg) {
			return true
		}
	}
	return false
}

// VerifyToken validates token according to the tiered policy described
// in the package doc and returns its claims on success.
//
// Production: requires a secret and a verified HS256 signature.
// Test: verifies an HMAC signature opportunistically when a secret and
// an HS* algorithm are present, falling through to an unverified decode
// (still format- and expiration-checked) otherwise.
// Development: decodes without verifying signature or expiration.
//
// Across every tier, "none" and an empty alg are rejected before any
// tier logic runs.
func VerifyToken(token string, opts Options) (jwtlib.MapClaims, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	opts = opts.resolve()

	parser := jwtlib.NewParser()
	unverified, _, err := parser.ParseUnverified(token, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	alg, _ := unverified.Header["alg"].(string)
	if unsafeAlgorithms[strings.ToLower(alg)] {
		logger.Warn("jwt: rejecting unsafe algorithm", logger.String("alg", alg))
		return nil, ErrUnsafeAlgorithm
	}
	if !algorithmAllowed(alg, opts.AllowedAlgorithms) {
		logger.Warn("jwt: algorithm not allowed for tier",
			logger.String("alg", alg), logger.String("tier", string(opts.Tier)))
		return nil, ErrAlgorithmNotAllowed
	}

	switch opts.Tier {
	case TierProduction:
		return verifyWithSecret(token, opts.Secret, []string{alg}, true)

	case TierTest:
		if strings.HasPrefix(strings.ToUpper(alg), "HS") && opts.Secret != "" {
			if claims, err := verifyWithSecret(token, opts.Secret, []string{alg}, true); err == nil {
				logger.Info("jwt: signature verified in test tier", logger.String("alg", alg))
				return claims, nil
			}
			logger.Warn("jwt: signature verification failed in test tier, falling back to unverified decode")
		}
		return decodeUnverified(token, true)

	default: // TierDevelopment
		return decodeUnverified(token, false)
	}
}

// ExtractClaim verifies token under opts and returns a single claim
// value from it.
func ExtractClaim(token, claim string, opts Options) (any, error) {
	claims, err := VerifyToken(token, opts)
	if err != nil {
		return nil, err
	}
	return claims[claim], nil
}

func verifyWithSecret(token, secret string, algorithms []string, checkExp bool) (jwtlib.MapClaims, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	claims := jwtlib.MapClaims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (any, error) {
		if !algorithmAllowed(t.Method.Alg(), algorithms) {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(secret), nil
	}, jwtlib.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if checkExp {
		if err := checkExpiration(claims); err != nil {
			return nil, err
		}
	}
	return claims, nil
}

// decodeUnverified parses claims without checking the signature,
// optionally still enforcing expiration (the "test" tier's fallback
// path checks exp; "development" checks neither).
func decodeUnverified(token string, checkExp bool) (jwtlib.MapClaims, error) {
	parser := jwtlib.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if checkExp {
		if err := checkExpiration(claims); err != nil {
			return nil, err
		}
	}
	return claims, nil
}

// checkExpiration enforces the "exp" claim by hand: jwt/v5's MapClaims
// no longer auto-validates on parse, and this path needs to keep
// checking expiration even when parsing with WithoutClaimsValidation or
// ParseUnverified.
func checkExpiration(claims jwtlib.MapClaims) error {
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if exp == nil {
		return nil
	}
	if time.Now().After(exp.Time) {
		return fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	return nil
}
