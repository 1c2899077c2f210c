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

	"github.com/spf13/cobra"

	"github.com/intentlayer/intentlayer-sdk-go/identity"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally stored DIDs",
	RunE:  runList,
}

var listKeyStorePath string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listKeyStorePath, "key-store", "", "Key store path (defaults to INTENT_KEY_STORE_PATH, then ~/.intentlayer/keys.json)")
}

func runList(cmd *cobra.Command, args []string) error {
	dids, err := identity.ListIdentities(listKeyStorePath)
	if err != nil {
		return fmt.Errorf("list identities: %w", err)
	}
	if len(dids) == 0 {
		fmt.Println("No identities found.")
		return nil
	}
	for _, did := range dids {
		fmt.Println(did)
	}
	return nil
}
