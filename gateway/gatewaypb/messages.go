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

// Package gatewaypb defines the wire messages for
// intentlayer.v2.GatewayService.RegisterDid. Real deployments of this
// protocol generate these from a .proto file with protoc-gen-go-grpc;
// this module hand-writes the equivalent message shapes plus a JSON
// wire codec (see codec.go) so the service can be called over a real
// gRPC channel without a protoc toolchain step. The field names below
// match what protoc-gen-go would produce for the snake_case .proto
// fields in §6 of the gateway's interface description.
package gatewaypb

// DidDocument is RegisterDidRequest's document field.
type DidDocument struct {
	Did           string `json:"did"`
	PubKey        []byte `json:"pub_key"`
	OrgId         string `json:"org_id,omitempty"`
	Label         string `json:"label,omitempty"`
	SchemaVersion int32  `json:"schema_version"`
	DocCid        string `json:"doc_cid,omitempty"`
	PayloadCid    string `json:"payload_cid,omitempty"`
}

// TxReceipt is RegisterDidResponse's receipt field.
type TxReceipt struct {
	Hash      string `json:"hash"`
	GasUsed   uint64 `json:"gas_used"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ErrorCode int32  `json:"error_code"`
}

// RegisterDidRequest is the RegisterDid RPC's request message.
type RegisterDidRequest struct {
	Document *DidDocument `json:"document"`
}

// RegisterDidResponse is the RegisterDid RPC's response message.
type RegisterDidResponse struct {
	Receipt *TxReceipt `json:"receipt"`
}
