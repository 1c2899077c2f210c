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

// Package client assembles identity, gateway, pinner, and ledger into
// the single entry point applications use: IntentClient.FromNetwork to
// construct, IntentClient.SendIntent to submit an intent end to end.
package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/intentlayer/intentlayer-sdk-go/config"
	"github.com/intentlayer/intentlayer-sdk-go/gateway"
	"github.com/intentlayer/intentlayer-sdk-go/identity"
	"github.com/intentlayer/intentlayer-sdk-go/ledger"
	"github.com/intentlayer/intentlayer-sdk-go/lockutil"
	"github.com/intentlayer/intentlayer-sdk-go/pinner"
)

const defaultSchemaVersion = 2

// FromNetworkOptions configures IntentClient.FromNetwork. Every field
// is optional; zero values pick the documented defaults.
type FromNetworkOptions struct {
	// Signer overrides the signer derived from a local Identity. If
	// both Signer and a local Identity are available, Signer wins for
	// ledger transactions but the Identity is still used for any
	// DID-bearing call (registration, DID resolution).
	Signer ledger.Signer

	// DisableAutoDID stops FromNetwork from loading or creating a
	// local Identity. A Signer must be supplied in that case, since
	// there is otherwise nothing to sign ledger transactions with.
	DisableAutoDID bool
	KeyStorePath   string
	OrgID          string
	AgentLabel     string

	// GatewayURL registers the Identity with a Gateway on first use.
	// Falls back to INTENT_GATEWAY_URL, then to the network preset's
	// gateway URL; when all are empty no registration is performed.
	GatewayURL    string
	SchemaVersion int
	Locker        lockutil.Locker

	// IntentRecorderAddr / DIDRegistryAddr override the network
	// preset's contract addresses.
	IntentRecorderAddr string
	DIDRegistryAddr    string
}

// IntentClient is the SDK's single entry point: it owns the local
// Identity (if any), the Gateway registration guard, the pinner, and
// the on-chain ledger client for a single resolved network.
type IntentClient struct {
	network  config.NetworkConfig
	identity identity.Identity
	hasID    bool

	idMgr  *IdentityManager
	ledger *ledger.Client
	pinner *pinner.Client

	didRegistryConfigured bool
	schemaVersion         int
}

// FromNetwork resolves networkName against the built-in network table
// (with <NETWORK_NAME>_RPC_URL-style environment overrides), wires a
// signer (explicit, or derived from a local Identity), and connects
// the ledger client, optional Gateway registration guard, and pinner,
// per §4.10 steps 1-4.
func FromNetwork(ctx context.Context, networkName, pinnerURL string, opts FromNetworkOptions) (*IntentClient, error) {
	config.LoadDotEnv()

	network, err := config.ResolveNetwork(networkName)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateEndpoint(pinnerURL); err != nil {
		return nil, fmt.Errorf("client: pinner url: %w", err)
	}

	schemaVersion := opts.SchemaVersion
	if schemaVersion == 0 {
		schemaVersion = defaultSchemaVersion
	}

	var id identity.Identity
	var hasID bool
	signer := opts.Signer

	if !opts.DisableAutoDID {
		loaded, err := identity.GetOrCreateDID(identity.Options{
			AutoCreate:   true,
			KeyStorePath: opts.KeyStorePath,
			OrgID:        opts.OrgID,
			AgentLabel:   opts.AgentLabel,
		})
		if err != nil {
			return nil, fmt.Errorf("client: resolve local identity: %w", err)
		}
		id = loaded
		hasID = true
		if signer == nil {
			signer = loaded.Signer
		}
	}
	if signer == nil {
		return nil, errors.New("client: no signer available (auto_did disabled and no Signer supplied)")
	}

	intentRecorderAddr := network.IntentRecorderAddr
	if opts.IntentRecorderAddr != "" {
		intentRecorderAddr = opts.IntentRecorderAddr
	}
	didRegistryAddr := network.DIDRegistryAddr
	if opts.DIDRegistryAddr != "" {
		didRegistryAddr = opts.DIDRegistryAddr
	}

	ledgerClient, err := ledger.NewClient(ctx, network.RPCURL, signer,
		common.HexToAddress(intentRecorderAddr), common.HexToAddress(didRegistryAddr))
	if err != nil {
		return nil, err
	}

	c := &IntentClient{
		network:               network,
		identity:              id,
		hasID:                 hasID,
		ledger:                ledgerClient,
		pinner:                pinner.New(pinnerURL),
		didRegistryConfigured: didRegistryAddr != "" && common.HexToAddress(didRegistryAddr) != (common.Address{}),
		schemaVersion:         schemaVersion,
	}

	gatewayURL := opts.GatewayURL
	if gatewayURL == "" {
		gatewayURL = os.Getenv("INTENT_GATEWAY_URL")
	}
	if gatewayURL == "" {
		gatewayURL = network.GatewayURL
	}
	if gatewayURL != "" && hasID {
		gw, err := dialGatewayClient(gatewayURL)
		if err != nil {
			return nil, err
		}
		locker := opts.Locker
		if locker == nil {
			locker, err = lockutil.FromEnv()
			if err != nil {
				return nil, err
			}
		}
		c.idMgr = NewIdentityManager(id, gw, locker, schemaVersion)
	}

	return c, nil
}

// dialGatewayClient builds the real gRPC transport, falling back to
// the offline stub transport when the gRPC transport fails to
// initialize. INTENT_USE_STUB_GATEWAY=1 selects the stub directly.
func dialGatewayClient(gatewayURL string) (*gateway.Client, error) {
	target, err := gateway.ParseGatewayURL(gatewayURL)
	if err != nil {
		return nil, err
	}
	md, err := gateway.AuthMetadata("", "")
	if err != nil {
		return nil, err
	}

	var transport gateway.Transport
	if os.Getenv("INTENT_USE_STUB_GATEWAY") == "1" {
		transport = gateway.NewStubTransport()
	} else {
		proto := gateway.NewProtoTransport()
		if err := proto.Initialize(target.HostPort, target.VerifyTLS); err != nil {
			stub := gateway.NewStubTransport()
			if stubErr := stub.Initialize(target.HostPort, target.VerifyTLS); stubErr != nil {
				return nil, fmt.Errorf("client: initialize stub gateway transport: %w", stubErr)
			}
			transport = stub
		} else {
			transport = proto
		}
	}

	return gateway.NewClient(transport, md), nil
}

// SendIntentOptions configures SendIntent.
type SendIntentOptions struct {
	Gas                  uint64
	GasPrice             *big.Int
	PollInterval         time.Duration
	DisableReceiptWait   bool
	Force                bool
	AllowUTF8Fallback    bool
	MinStakeWeiOverride  *big.Int
}

// SendIntent runs §4.10's eight-step orchestration: optional Gateway
// registration, optional on-chain DID activity check, pin-then-CID,
// envelope hash normalization, and IntentRecorder submission.
func (c *IntentClient) SendIntent(ctx context.Context, envelopeHash string, payload map[string]any, opts SendIntentOptions) (*ledger.Receipt, error) {
	if len(payload) == 0 {
		return nil, errors.New("client: payload must be a non-empty JSON object")
	}

	if c.idMgr != nil {
		if err := c.idMgr.EnsureRegistered(ctx); err != nil {
			var quotaErr *gateway.QuotaExceededError
			if errors.As(err, &quotaErr) {
				return nil, err
			}
		}
	}

	if c.didRegistryConfigured && c.hasID {
		owner, active, err := c.ledger.ResolveDID(ctx, c.identity.DID)
		if err == nil && !active && !opts.Force {
			return nil, &gateway.InactiveDIDError{DID: c.identity.DID, Owner: owner.Hex()}
		}
	}

	cid, err := c.pinner.Pin(ctx, payload)
	if err != nil {
		return nil, err
	}
	cidBytes, err := ledger.IPFSCIDToBytes(cid, opts.AllowUTF8Fallback)
	if err != nil {
		return nil, err
	}

	hashBytes, err := ledger.NormalizeEnvelopeHash(envelopeHash)
	if err != nil {
		return nil, err
	}

	stakeWei, err := c.ledger.MinStakeWei(ctx, opts.MinStakeWeiOverride)
	if err != nil {
		return nil, err
	}

	return c.ledger.RecordIntent(ctx, hashBytes, cidBytes, stakeWei, ledger.RecordOptions{
		Gas:          opts.Gas,
		GasPrice:     opts.GasPrice,
		PollInterval: opts.PollInterval,
		WaitReceipt:  !opts.DisableReceiptWait,
	})
}

// MinStakeWei exposes the ledger client's cached minimum stake, e.g.
// so a caller can show it before calling SendIntent.
func (c *IntentClient) MinStakeWei(ctx context.Context) (*big.Int, error) {
	return c.ledger.MinStakeWei(ctx, nil)
}

// Identity returns the local Identity, if any was loaded.
func (c *IntentClient) Identity() (identity.Identity, bool) {
	return c.identity, c.hasID
}
