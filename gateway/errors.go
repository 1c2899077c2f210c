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
	"errors"
	"fmt"
)

// RegisterError mirrors the wire error_code enum a TxReceipt carries.
type RegisterError int

const (
	UnknownUnspecified RegisterError = 0
	DocCIDEmpty        RegisterError = 1
	AlreadyRegistered  RegisterError = 2
	InvalidDID         RegisterError = 3
	SchemaMismatch     RegisterError = 4
	InvalidOperator    RegisterError = 5

	// Legacy values kept distinct from the low numeric range above so a
	// server speaking an older wire schema can still be understood.
	DIDQuotaExceeded RegisterError = 1000
	ProcessingError  RegisterError = 1001
	Unauthorized     RegisterError = 1002
	InvalidPayload   RegisterError = 1003
	InvalidDocCID    RegisterError = 1004
)

func (e RegisterError) String() string {
	switch e {
	case UnknownUnspecified:
		return "UNKNOWN_UNSPECIFIED"
	case DocCIDEmpty:
		return "DOC_CID_EMPTY"
	case AlreadyRegistered:
		return "ALREADY_REGISTERED"
	case InvalidDID:
		return "INVALID_DID"
	case SchemaMismatch:
		return "SCHEMA_VERSION_MISMATCH"
	case InvalidOperator:
		return "INVALID_OPERATOR"
	case DIDQuotaExceeded:
		return "DID_QUOTA_EXCEEDED"
	case ProcessingError:
		return "PROCESSING_ERROR"
	case Unauthorized:
		return "UNAUTHORIZED"
	case InvalidPayload:
		return "INVALID_PAYLOAD"
	case InvalidDocCID:
		return "INVALID_DOC_CID"
	default:
		return fmt.Sprintf("REGISTER_ERROR_%d", int(e))
	}
}

// GatewayError is the base error kind for every failure this package
// returns that isn't one of the more specific types below. Use
// errors.As to recover it and its Code.
type GatewayError struct {
	Code    RegisterError
	Message string
	Cause   error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gateway: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("gateway: %s", e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Cause }

// GatewayConnectionError wraps a transport-level connectivity failure
// (UNAVAILABLE or equivalent). Always retryable.
type GatewayConnectionError struct{ *GatewayError }

// GatewayResponseError wraps a non-retryable application-level rejection
// carrying a specific RegisterError code.
type GatewayResponseError struct{ *GatewayError }

// GatewayTimeoutError is raised exactly once per attempt on
// DEADLINE_EXCEEDED; never retried.
type GatewayTimeoutError struct{ *GatewayError }

// QuotaExceededError always escapes ensure_registered's swallow-errors
// policy, since billing errors must reach the caller.
type QuotaExceededError struct{ *GatewayError }

// AlreadyRegisteredDIDError is raised when registration is attempted for
// a DID that already has an active owner on the Gateway's records. It is
// distinct from the ALREADY_REGISTERED response, which register_did
// treats as a successful no-op rather than an error.
type AlreadyRegisteredDIDError struct {
	*GatewayError
	Owner string
}

func newGatewayError(code RegisterError, msg string, cause error) *GatewayError {
	return &GatewayError{Code: code, Message: msg, Cause: cause}
}

func newConnectionError(msg string, cause error) *GatewayConnectionError {
	return &GatewayConnectionError{newGatewayError(UnknownUnspecified, msg, cause)}
}

func newTimeoutError(msg string) *GatewayTimeoutError {
	return &GatewayTimeoutError{newGatewayError(UnknownUnspecified, msg, nil)}
}

func newResponseError(code RegisterError, msg string) *GatewayResponseError {
	return &GatewayResponseError{newGatewayError(code, msg, nil)}
}

func newQuotaExceededError(did string) *QuotaExceededError {
	return &QuotaExceededError{newGatewayError(DIDQuotaExceeded,
		fmt.Sprintf("registration quota exceeded for %s", did), nil)}
}

// InactiveDIDError is raised when a DID resolves on-chain with
// active=false and the caller did not force the call through.
type InactiveDIDError struct {
	DID   string
	Owner string
}

func (e *InactiveDIDError) Error() string {
	return fmt.Sprintf("gateway: DID %s is inactive (owner %s)", e.DID, e.Owner)
}

var errMultipleCredentials = errors.New("gateway: exactly one of api_key or bearer_token may be set")
