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

// Package secretsplit splits an arbitrary payload into n shares so that any
// k of them restore it.
//
// Only a fresh 32-byte key is threshold-shared. The payload is compressed
// with zstd and encrypted once with ChaCha20-Poly1305 under that key, and
// the ciphertext is appended to every key share:
//
//	share = keyShare (33 bytes: index || value) || ciphertext
//
// The ciphertext is identical across all shares of one split. Combine
// checks this before reconstructing the key, so shares from different
// splits are rejected with ErrInconsistentShares.
//
// Each key encrypts exactly one message, which is what makes the fixed
// all-zero nonce safe. Do not reuse a Splitter's key material across
// payloads; Split always draws a new key.
//
// Combine performs no count check against k. Supplying fewer than k
// genuine shares reconstructs a wrong key, which the AEAD tag rejects with
// ErrAuthenticationFailure. That rejection is overwhelmingly likely but not
// a mathematical guarantee.
//
// Example:
//
//	shares, err := secretsplit.Split([]byte("yup"), 3, 2)
//	if err != nil {
//		return err
//	}
//	data, err := secretsplit.Combine(shares[1:])
package secretsplit
