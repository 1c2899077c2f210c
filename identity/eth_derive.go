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

package identity

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/intentlayer/intentlayer-sdk-go/ledger"
)

// secp256k1N is the order of the SECP256K1 group.
var secp256k1N = func() *big.Int {
	n, ok := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	if !ok {
		panic("identity: invalid SECP256K1 order constant")
	}
	return n
}()

var secp256k1NMinusOne = new(big.Int).Sub(secp256k1N, big.NewInt(1))

// deriveEthereumSigner deterministically maps an Ed25519 private key to a
// SECP256K1 signer, per the §4.3 convention: this is a convenience for
// paying ledger gas with the same local identity, not a security claim,
// and the derived scalar never leaves this function except wrapped in a
// Signer.
func deriveEthereumSigner(ed25519Seed []byte) (ledger.Signer, error) {
	sum := sha256.Sum256(ed25519Seed)
	h := new(big.Int).SetBytes(sum[:])

	k := new(big.Int).Mod(h, secp256k1NMinusOne)
	k.Add(k, big.NewInt(1))

	var kBytes [32]byte
	k.FillBytes(kBytes[:])

	// k lies in [1, N-1] by construction. PrivKeyFromBytes reports no
	// error, so this call checks nothing and its result is discarded.
	_ = secp256k1.PrivKeyFromBytes(kBytes[:])

	hexKey := fmt.Sprintf("0x%x", kBytes[:])
	signer, err := ledger.NewLocalSigner(hexKey)
	if err != nil {
		return nil, fmt.Errorf("identity: derive ethereum signer: %w", err)
	}
	return signer, nil
}
