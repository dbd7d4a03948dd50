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

// Package aead guards AEAD keys against nonce reuse.
//
// A split encrypts its payload with the fixed all-zero nonce, which is only
// safe because every key seals exactly one message. A NonceTracker bound to
// each cipher instance turns an accidental second Seal into ErrNonceReuse
// instead of a silent keystream leak.
package aead

import (
	"encoding/hex"
	"sync"
)

// NonceTracker records the nonces sealed under a single key. It is safe
// for concurrent use.
type NonceTracker struct {
	mu     sync.Mutex
	nonces map[string]struct{}
}

// NewNonceTracker creates an empty tracker. Use one tracker per key.
func NewNonceTracker() *NonceTracker {
	return &NonceTracker{nonces: make(map[string]struct{})}
}

// CheckAndRecordNonce records nonce, or returns ErrNonceReuse if it was
// recorded before. Check and record happen atomically.
func (nt *NonceTracker) CheckAndRecordNonce(nonce []byte) error {
	key := hex.EncodeToString(nonce)

	nt.mu.Lock()
	defer nt.mu.Unlock()

	if _, exists := nt.nonces[key]; exists {
		return ErrNonceReuse
	}
	nt.nonces[key] = struct{}{}
	return nil
}

// Contains reports whether nonce was recorded, without recording it.
func (nt *NonceTracker) Contains(nonce []byte) bool {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	_, exists := nt.nonces[hex.EncodeToString(nonce)]
	return exists
}

// Count returns the number of recorded nonces, which is the number of
// messages sealed under the key.
func (nt *NonceTracker) Count() int {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	return len(nt.nonces)
}
