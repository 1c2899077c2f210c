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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// IPFSCIDToBytes converts a pinner-returned CID string to the raw
// bytes IntentRecorder.recordIntent expects: a "0x"-prefixed or bare
// hex string is decoded as-is; otherwise the CID is treated as
// base58 (the common case for CIDv0 and multibase-"z" CIDv1 strings).
// If neither decodes, the caller's allowUTF8Fallback setting decides
// whether to fall back to the raw UTF-8 bytes of cid or return an
// error.
func IPFSCIDToBytes(cid string, allowUTF8Fallback bool) ([]byte, error) {
	hexCandidate := strings.TrimPrefix(cid, "0x")
	if raw, err := hex.DecodeString(hexCandidate); err == nil {
		return raw, nil
	}

	multibase := strings.TrimPrefix(cid, "z")
	if raw, err := base58.Decode(multibase); err == nil && len(raw) > 0 {
		return raw, nil
	}

	if allowUTF8Fallback {
		return []byte(cid), nil
	}
	return nil, fmt.Errorf("ledger: cid %q is neither hex nor base58, and UTF-8 fallback is disabled", cid)
}
