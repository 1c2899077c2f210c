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

var deleteCmd = &cobra.Command{
	Use:   "delete [did]",
	Short: "Delete a single identity, or wipe the whole store with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDelete,
}

var (
	deleteKeyStorePath string
	deleteAll          bool
)

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVar(&deleteKeyStorePath, "key-store", "", "Key store path (defaults to INTENT_KEY_STORE_PATH, then ~/.intentlayer/keys.json)")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete every locally stored identity")
}

func runDelete(cmd *cobra.Command, args []string) error {
	if deleteAll {
		if err := identity.DeleteLocal(deleteKeyStorePath, ""); err != nil {
			return fmt.Errorf("delete all identities: %w", err)
		}
		fmt.Println("Deleted all local identities.")
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("delete requires exactly one DID argument, or --all")
	}
	if err := identity.DeleteLocal(deleteKeyStorePath, args[0]); err != nil {
		return fmt.Errorf("delete identity %s: %w", args[0], err)
	}
	fmt.Printf("Deleted identity %s\n", args[0])
	return nil
}
