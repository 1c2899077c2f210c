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

// Package config resolves the named network a client talks to: RPC
// endpoint, chain ID, deployed contract addresses, and the block
// explorer used to build human-facing transaction URLs.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// NetworkConfig is everything FromNetwork needs to dial a chain and
// locate its contracts.
type NetworkConfig struct {
	Name               string
	ChainID            int64
	RPCURL             string
	GatewayURL         string
	IntentRecorderAddr string
	DIDRegistryAddr    string
	ExplorerBaseURL    string
}

// networkPresets mirrors the deployed networks this SDK ships
// addresses for. Entries are placeholders until a real deployment is
// wired in by the embedding application; RPCURL and the contract
// addresses are always overridable by environment variable.
var networkPresets = map[string]NetworkConfig{
	"local": {
		Name:               "local",
		ChainID:            31337,
		RPCURL:             "http://127.0.0.1:8545",
		GatewayURL:         "http://127.0.0.1:7000",
		IntentRecorderAddr: "0x0000000000000000000000000000000000000000",
		DIDRegistryAddr:    "0x0000000000000000000000000000000000000000",
		ExplorerBaseURL:    "",
	},
	"sepolia": {
		Name:            "sepolia",
		ChainID:         11155111,
		RPCURL:          "https://rpc.sepolia.org",
		GatewayURL:      "https://gateway.sepolia.intentlayer.io",
		ExplorerBaseURL: "https://sepolia.etherscan.io",
	},
	"mainnet": {
		Name:            "mainnet",
		ChainID:         1,
		RPCURL:          "https://eth.llamarpc.com",
		GatewayURL:      "https://gateway.intentlayer.io",
		ExplorerBaseURL: "https://etherscan.io",
	},
	"zksync-era-sepolia": {
		Name:            "zksync-era-sepolia",
		ChainID:         300,
		RPCURL:          "https://sepolia.era.zksync.dev",
		GatewayURL:      "https://gateway.zksync-sepolia.intentlayer.io",
		ExplorerBaseURL: "https://sepolia.explorer.zksync.io",
	},
}

// ErrUnknownNetwork is returned by ResolveNetwork for an unrecognized
// network name.
type ErrUnknownNetwork struct {
	Name string
}

func (e *ErrUnknownNetwork) Error() string {
	return fmt.Sprintf("config: unknown network %q", e.Name)
}

// envPrefix upper-cases and underscore-normalizes a network name for
// use as an environment variable prefix, e.g. "zksync-era-sepolia" ->
// "ZKSYNC_ERA_SEPOLIA".
func envPrefix(network string) string {
	return strings.ToUpper(strings.ReplaceAll(network, "-", "_"))
}

// ResolveNetwork looks up network by name and applies any
// <NETWORK_NAME>_RPC_URL / <NETWORK_NAME>_GATEWAY_URL /
// <NETWORK_NAME>_INTENT_RECORDER_ADDRESS /
// <NETWORK_NAME>_DID_REGISTRY_ADDRESS environment overrides, where
// NETWORK_NAME is the upper-cased, underscore-normalized network
// name. An https RPC or gateway URL is required unless it targets a
// loopback host, matching the same insecure-transport rule gateway
// dialing enforces.
func ResolveNetwork(network string) (NetworkConfig, error) {
	preset, ok := networkPresets[network]
	if !ok {
		return NetworkConfig{}, &ErrUnknownNetwork{Name: network}
	}

	prefix := envPrefix(network)
	if v := os.Getenv(prefix + "_RPC_URL"); v != "" {
		preset.RPCURL = v
	}
	if v := os.Getenv(prefix + "_GATEWAY_URL"); v != "" {
		preset.GatewayURL = v
	}
	if v := os.Getenv(prefix + "_INTENT_RECORDER_ADDRESS"); v != "" {
		preset.IntentRecorderAddr = v
	}
	if v := os.Getenv(prefix + "_DID_REGISTRY_ADDRESS"); v != "" {
		preset.DIDRegistryAddr = v
	}
	if v := os.Getenv(prefix + "_CHAIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return NetworkConfig{}, fmt.Errorf("config: invalid %s_CHAIN_ID: %w", prefix, err)
		}
		preset.ChainID = id
	}
	if v := os.Getenv(prefix + "_EXPLORER_BASE_URL"); v != "" {
		preset.ExplorerBaseURL = v
	}

	if err := ValidateEndpoint(preset.RPCURL); err != nil {
		return NetworkConfig{}, fmt.Errorf("config: %s rpc url: %w", network, err)
	}
	if preset.GatewayURL != "" {
		if err := ValidateEndpoint(preset.GatewayURL); err != nil {
			return NetworkConfig{}, fmt.Errorf("config: %s gateway url: %w", network, err)
		}
	}

	return preset, nil
}

// Networks returns the list of known preset network names, sorted for
// stable display in --help output.
func Networks() []string {
	names := make([]string, 0, len(networkPresets))
	for name := range networkPresets {
		names = append(names, name)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}

// ValidateEndpoint enforces the same https-except-loopback rule on any
// URL a caller wants to treat as a network endpoint (RPC, gateway, or
// pinner).
func ValidateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	switch u.Scheme {
	case "https", "wss":
		return nil
	case "http", "ws":
		host := u.Hostname()
		if host == "127.0.0.1" || host == "localhost" || host == "::1" {
			return nil
		}
		return fmt.Errorf("insecure scheme %q only allowed for loopback hosts, got host %q", u.Scheme, host)
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}
