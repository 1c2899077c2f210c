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

package client

import (
	"testing"

	"github.com/intentlayer/intentlayer-sdk-go/config"
	"github.com/stretchr/testify/assert"
)

func TestTxURLZkSyncNetworkName(t *testing.T) {
	c := &IntentClient{network: config.NetworkConfig{Name: "zksync-era-sepolia", ChainID: 300}}
	assert.Equal(t, "https://sepolia.explorer.zksync.io/tx/0xdead", c.TxURL("0xdead"))
}

func TestTxURLChainIDMainnet(t *testing.T) {
	c := &IntentClient{network: config.NetworkConfig{Name: "custom", ChainID: 1}}
	assert.Equal(t, "https://etherscan.io/tx/0xdead", c.TxURL("dead"))
}

func TestTxURLChainIDSepolia(t *testing.T) {
	c := &IntentClient{network: config.NetworkConfig{Name: "custom", ChainID: 11155111}}
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xdead", c.TxURL("0xdead"))
}

func TestTxURLNetworkExplorerBaseURLPreferredOverChainID(t *testing.T) {
	c := &IntentClient{network: config.NetworkConfig{Name: "custom", ChainID: 1, ExplorerBaseURL: "https://my-explorer.example.com"}}
	assert.Equal(t, "https://my-explorer.example.com/tx/0xdead", c.TxURL("0xdead"))
}

func TestTxURLUnknownChainFallsBackToBlockscan(t *testing.T) {
	c := &IntentClient{network: config.NetworkConfig{Name: "custom", ChainID: 999999}}
	assert.Equal(t, "https://blockscan.com/search?q=0xdead", c.TxURL("0xdead"))
}
