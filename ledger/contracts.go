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

package ledger

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/intent_recorder.abi.json
var intentRecorderABIJSON []byte

//go:embed abi/did_registry.abi.json
var didRegistryABIJSON []byte

// IntentRecorderABI returns the parsed ABI for IntentRecorder.recordIntent.
func IntentRecorderABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(string(intentRecorderABIJSON)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("ledger: parse IntentRecorder ABI: %w", err)
	}
	return parsed, nil
}

// DIDRegistryABI returns the parsed ABI for DIDRegistry.resolve/register.
func DIDRegistryABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(string(didRegistryABIJSON)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("ledger: parse DIDRegistry ABI: %w", err)
	}
	return parsed, nil
}
