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

import (
	"errors"
	"sync"
	"testing"
)

func TestNewNonceTracker(t *testing.T) {
	tracker := NewNonceTracker()
	if tracker.Count() != 0 {
		t.Errorf("Count() = %d, want 0", tracker.Count())
	}
	if tracker.Contains(make([]byte, 12)) {
		t.Error("empty tracker reports a recorded nonce")
	}
}

func TestCheckAndRecordNonce(t *testing.T) {
	tracker := NewNonceTracker()
	zero := make([]byte, 12)
	one := append(make([]byte, 11), 1)

	if err := tracker.CheckAndRecordNonce(zero); err != nil {
		t.Fatalf("first use of nonce returned error: %v", err)
	}
	if !tracker.Contains(zero) {
		t.Error("Contains() = false after recording")
	}
	if err := tracker.CheckAndRecordNonce(zero); !errors.Is(err, ErrNonceReuse) {
		t.Errorf("reused nonce error = %v, want ErrNonceReuse", err)
	}
	if err := tracker.CheckAndRecordNonce(one); err != nil {
		t.Errorf("distinct nonce returned error: %v", err)
	}
	if tracker.Count() != 2 {
		t.Errorf("Count() = %d, want 2", tracker.Count())
	}
}

func TestCheckAndRecordNonce_Concurrent(t *testing.T) {
	tracker := NewNonceTracker()
	nonce := make([]byte, 12)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.CheckAndRecordNonce(nonce) == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("%d goroutines recorded the same nonce, want exactly 1", successes)
	}
}
