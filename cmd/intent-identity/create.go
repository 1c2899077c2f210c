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

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new local identity",
	Long:  `Generates a new Ed25519 keypair, derives its did:key identifier, and persists it encrypted at rest.`,
	RunE:  runCreate,
}

var (
	createOrgID        string
	createAgentLabel   string
	createKeyStorePath string
)

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createOrgID, "org-id", "", "Organization ID to associate with this identity")
	createCmd.Flags().StringVar(&createAgentLabel, "agent-label", "", "Human-readable label for this identity")
	createCmd.Flags().StringVar(&createKeyStorePath, "key-store", "", "Key store path (defaults to INTENT_KEY_STORE_PATH, then ~/.intentlayer/keys.json)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	id, err := identity.CreateNewIdentity(identity.Options{
		KeyStorePath: createKeyStorePath,
		OrgID:        createOrgID,
		AgentLabel:   createAgentLabel,
	})
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}

	fmt.Printf("Created identity %s\n", id.DID)
	if id.OrgID != "" {
		fmt.Printf("  org-id:      %s\n", id.OrgID)
	}
	if id.AgentLabel != "" {
		fmt.Printf("  agent-label: %s\n", id.AgentLabel)
	}
	fmt.Printf("  created-at:  %s\n", id.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}
