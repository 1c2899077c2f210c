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
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/intentlayer/intentlayer-sdk-go/gateway/gatewaypb"
)

const registerDidMethod = "/intentlayer.v2.GatewayService/RegisterDid"

// ProtoTransport is the real gRPC implementation of Transport.
type ProtoTransport struct {
	mu   sync.Mutex
	conn *grpc.ClientConn
}

// NewProtoTransport returns a ready-to-initialize proto transport.
func NewProtoTransport() *ProtoTransport {
	return &ProtoTransport{}
}

func (p *ProtoTransport) Initialize(target string, verifyTLS bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var creds credentials.TransportCredentials
	if verifyTLS {
		cfg, err := tlsConfig()
		if err != nil {
			return fmt.Errorf("gateway: build TLS config: %w", err)
		}
		creds = credentials.NewTLS(cfg)
	} else {
		creds = insecure.NewCredentials()
	}

	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(creds),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                keepaliveTime,
			Timeout:             keepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageSize),
			grpc.MaxCallSendMsgSize(maxMessageSize),
			grpc.CallContentSubtype(gatewaypb.CodecName),
		),
	)
	if err != nil {
		return fmt.Errorf("gateway: dial %s: %w", target, err)
	}
	p.conn = conn
	return nil
}

func (p *ProtoTransport) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *ProtoTransport) IsAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil
}

func (p *ProtoTransport) RegisterDid(ctx context.Context, doc DidDocument, timeout time.Duration, md map[string]string) (TxReceipt, error) {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return TxReceipt{}, newConnectionError("proto transport not initialized", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if len(md) > 0 {
		ctx = metadata.NewOutgoingContext(ctx, metadata.New(md))
	}

	req := &gatewaypb.RegisterDidRequest{
		Document: &gatewaypb.DidDocument{
			Did:           doc.DID,
			PubKey:        doc.PubKey,
			OrgId:         doc.OrgID,
			Label:         doc.Label,
			SchemaVersion: int32(doc.SchemaVersion),
			DocCid:        doc.DocCID,
			PayloadCid:    doc.PayloadCID,
		},
	}
	resp := &gatewaypb.RegisterDidResponse{}

	err := conn.Invoke(ctx, registerDidMethod, req, resp)
	if err != nil {
		return TxReceipt{}, classifyTransportError(err)
	}
	if resp.Receipt == nil {
		return TxReceipt{}, newGatewayError(UnknownUnspecified, "empty response from gateway", nil)
	}

	return TxReceipt{
		Hash:      resp.Receipt.Hash,
		GasUsed:   resp.Receipt.GasUsed,
		Success:   resp.Receipt.Success,
		Error:     resp.Receipt.Error,
		ErrorCode: RegisterError(resp.Receipt.ErrorCode),
	}, nil
}

// classifyTransportError maps a gRPC status code to this package's
// error taxonomy per the retry state machine in the client design:
// DEADLINE_EXCEEDED is a non-retryable timeout; UNAVAILABLE is a
// retryable connection error; RESOURCE_EXHAUSTED/INTERNAL/UNKNOWN are
// retryable generic GatewayErrors; everything else is non-retryable.
func classifyTransportError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return newGatewayError(UnknownUnspecified, err.Error(), err)
	}
	switch st.Code() {
	case codes.DeadlineExceeded:
		return newTimeoutError(st.Message())
	case codes.Unavailable:
		return newConnectionError(st.Message(), err)
	case codes.ResourceExhausted, codes.Internal, codes.Unknown:
		return newGatewayError(UnknownUnspecified, st.Message(), err)
	default:
		return &GatewayError{Code: UnknownUnspecified, Message: st.Message(), Cause: err}
	}
}

// retryable reports whether err's classification means the client
// should retry (per classifyTransportError's mapping): connection
// errors and the RESOURCE_EXHAUSTED/INTERNAL/UNKNOWN bucket are
// retryable; timeouts, response errors, and quota errors are not.
func retryable(err error) bool {
	var connErr *GatewayConnectionError
	if errors.As(err, &connErr) {
		return true
	}
	var timeoutErr *GatewayTimeoutError
	if errors.As(err, &timeoutErr) {
		return false
	}
	var respErr *GatewayResponseError
	if errors.As(err, &respErr) {
		return false
	}
	var quotaErr *QuotaExceededError
	if errors.As(err, &quotaErr) {
		return false
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		if st, ok := status.FromError(gwErr.Cause); ok && gwErr.Cause != nil {
			switch st.Code() {
			case codes.ResourceExhausted, codes.Internal, codes.Unknown:
				return true
			}
			return false
		}
		return true
	}
	return isRetryableText(err)
}

// retryableTextMarkers are substrings that, when present in a
// non-transport error's message, mean the client should retry rather
// than surface it immediately.
var retryableTextMarkers = []string{
	"timeout", "unavailable", "resource", "temporary", "overloaded", "connection refused",
}

func isRetryableText(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range retryableTextMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
