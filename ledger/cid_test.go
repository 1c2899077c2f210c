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
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPFSCIDToBytesHexPath(t *testing.T) {
	raw, err := IPFSCIDToBytes("0xdeadbeef", false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, raw)
}

func TestIPFSCIDToBytesBareHexPath(t *testing.T) {
	raw, err := IPFSCIDToBytes("deadbeef", false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, raw)
}

func TestIPFSCIDToBytesBase58Path(t *testing.T) {
	encoded := base58.Encode([]byte("hello cid bytes"))
	raw, err := IPFSCIDToBytes(encoded, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello cid bytes"), raw)
}

func TestIPFSCIDToBytesUTF8FallbackDisabled(t *testing.T) {
	_, err := IPFSCIDToBytes("!!!not hex or base58!!!", false)
	assert.Error(t, err)
}

func TestIPFSCIDToBytesUTF8FallbackEnabled(t *testing.T) {
	raw, err := IPFSCIDToBytes("!!!not hex or base58!!!", true)
	require.NoError(t, err)
	assert.Equal(t, []byte("!!!not hex or base58!!!"), raw)
}
