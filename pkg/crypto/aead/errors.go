// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secretsplit.
//
// go-secretsplit is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package aead

import "errors"

var (
	// ErrNonceReuse is returned when a nonce is sealed twice under the same
	// key. For ChaCha20-Poly1305 this leaks keystream and allows forgeries,
	// so the encryption is refused.
	ErrNonceReuse = errors.New("aead: nonce reuse detected, encryption rejected")
)
