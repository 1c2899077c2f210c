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

import "errors"

// Sentinel errors returned by the identity package. Callers should use
// errors.Is rather than comparing messages.
var (
	ErrNoIdentity       = errors.New("identity: no identity exists and auto-create is disabled")
	ErrNoEncryptionKey  = errors.New("identity: no encryption key available and not in a CI environment")
	ErrDecryptionFailed = errors.New("identity: failed to decrypt stored key data")
	ErrInvalidMasterKey = errors.New("identity: INTENT_MASTER_KEY is not valid base64 or not 32 bytes")
	ErrNotFound         = errors.New("identity: DID not found in key store")
	ErrCorruptStore     = errors.New("identity: key store entry is missing its DID or metadata")
)
