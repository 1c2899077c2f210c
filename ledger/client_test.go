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
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEnvelopeHashWithPrefix(t *testing.T) {
	h := strings.Repeat("ab", 32)
	got, err := NormalizeEnvelopeHash("0x" + h)
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), got[0])
	assert.Equal(t, byte(0xab), got[31])
}

func TestNormalizeEnvelopeHashWithoutPrefix(t *testing.T) {
	h := strings.Repeat("cd", 32)
	gotPrefixed, err := NormalizeEnvelopeHash("0x" + h)
	require.NoError(t, err)
	gotBare, err := NormalizeEnvelopeHash(h)
	require.NoError(t, err)
	assert.Equal(t, gotPrefixed, gotBare)
}

func TestNormalizeEnvelopeHashRejectsWrongLength(t *testing.T) {
	_, err := NormalizeEnvelopeHash("0xabcd")
	assert.Error(t, err)
}

func TestNormalizeEnvelopeHashRejectsNonHex(t *testing.T) {
	_, err := NormalizeEnvelopeHash("0x" + strings.Repeat("zz", 32))
	assert.Error(t, err)
}

func TestIntentRecorderABIPacksRecordIntent(t *testing.T) {
	parsed, err := IntentRecorderABI()
	require.NoError(t, err)

	var hash [32]byte
	copy(hash[:], strings.Repeat("a", 32))
	data, err := parsed.Pack("recordIntent", hash, []byte("cid-bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestDIDRegistryABIParses(t *testing.T) {
	parsed, err := DIDRegistryABI()
	require.NoError(t, err)
	_, ok := parsed.Methods["resolve"]
	assert.True(t, ok)
	_, ok = parsed.Methods["register"]
	assert.True(t, ok)
}

func TestCanonicalReceiptSuccess(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	r := &types.Receipt{
		TxHash:      common.HexToHash("0xdead"),
		BlockNumber: big.NewInt(42),
		BlockHash:   common.HexToHash("0xbeef"),
		Status:      types.ReceiptStatusSuccessful,
		GasUsed:     21000,
	}

	canon := canonicalReceipt(r, from, to)
	assert.Equal(t, uint64(1), canon.Status)
	assert.Equal(t, uint64(42), canon.BlockNumber)
	assert.Equal(t, from.Hex(), canon.From)
	assert.Equal(t, to.Hex(), canon.To)
	assert.Equal(t, uint64(21000), canon.GasUsed)
}

func TestCanonicalReceiptIgnoresContractAddress(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	r := &types.Receipt{
		TxHash:          common.HexToHash("0xdead"),
		BlockNumber:     big.NewInt(42),
		BlockHash:       common.HexToHash("0xbeef"),
		Status:          types.ReceiptStatusSuccessful,
		GasUsed:         21000,
		ContractAddress: common.HexToAddress("0x3333333333333333333333333333333333333333"),
	}

	canon := canonicalReceipt(r, from, to)
	assert.Equal(t, to.Hex(), canon.To, "To must come from the submitted transaction, not ContractAddress")
}
