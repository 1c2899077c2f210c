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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/intentlayer/intentlayer-sdk-go/internal/logger"
	"github.com/intentlayer/intentlayer-sdk-go/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "intent-identity",
	Short: "Manage local Intent Layer identities",
	Long: `intent-identity manages the local key store of did:key identities
this SDK signs intents with.

This tool supports:
- Creating a new local identity
- Listing locally stored DIDs
- Deleting a single identity or wiping the store

Verifying an identity's on-chain registration or signatures is out of
scope for this tool; use the SDK's client package for that.`,
}

var metricsAddr string

func main() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if metricsAddr != "" {
			go func() {
				if err := metrics.StartServer(metricsAddr); err != nil {
					logger.GetDefaultLogger().Error("metrics server stopped", logger.Error(err))
				}
			}()
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "If set, serve Prometheus metrics (crypto op counters) on this address, e.g. :9090")
}
