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

// Package gateway is the client side of the Gateway DID-registration
// protocol: a pluggable transport (real gRPC or a deterministic offline
// stub), TLS/URL policy, and a retrying client with a single-flight
// registration guarantee (the single-flight state machine itself lives
// in the client package, which composes this package with lockutil).
package gateway

// DidDocument is the wire shape RegisterDid sends.
type DidDocument struct {
	DID           string
	PubKey        []byte
	OrgID         string
	Label         string
	SchemaVersion int
	DocCID        string
	PayloadCID    string
}

// TxReceipt is the wire shape RegisterDid returns.
type TxReceipt struct {
	Hash      string
	GasUsed   uint64
	Success   bool
	Error     string
	ErrorCode RegisterError
}
