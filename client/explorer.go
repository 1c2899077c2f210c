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
	"fmt"
	"strings"
)

// explorerByNetwork and explorerByChainID back TxURL: a network name
// match wins over a chain ID match, and an unmatched chain falls back
// to a generic blockscan.com lookup.
var explorerByNetwork = map[string]string{
	"zksync-era-sepolia": "sepolia.explorer.zksync.io",
}

var explorerByChainID = map[int64]string{
	1:         "etherscan.io",
	11155111:  "sepolia.etherscan.io",
	300:       "sepolia.explorer.zksync.io",
}

const explorerFallbackBase = "blockscan.com"

// TxURL builds a human-facing explorer URL for a transaction hash,
// preferring the network's own preset (if it's configured with one),
// then chain ID, then a generic blockscan.com fallback.
func (c *IntentClient) TxURL(txHash string) string {
	hash := strings.TrimPrefix(txHash, "0x")
	if base, ok := explorerByNetwork[c.network.Name]; ok {
		return fmt.Sprintf("https://%s/tx/0x%s", base, hash)
	}
	if c.network.ExplorerBaseURL != "" {
		return fmt.Sprintf("%s/tx/0x%s", strings.TrimRight(c.network.ExplorerBaseURL, "/"), hash)
	}
	if base, ok := explorerByChainID[c.network.ChainID]; ok {
		return fmt.Sprintf("https://%s/tx/0x%s", base, hash)
	}
	return fmt.Sprintf("https://%s/search?q=0x%s", explorerFallbackBase, hash)
}
