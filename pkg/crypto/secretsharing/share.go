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

package secretsharing

import "fmt"

// Share represents a single share of a secret.
type Share struct {
	Index byte   // Evaluation point x (1-255)
	Value []byte // p(x) for every byte polynomial
}

// EncodedSize returns the size of an encoded share for a secret of
// secretLen bytes: one index byte followed by the values.
func EncodedSize(secretLen int) int {
	return 1 + secretLen
}

// MarshalBinary encodes the share as Index || Value.
func (s Share) MarshalBinary() ([]byte, error) {
	if s.Index == 0 {
		return nil, fmt.Errorf("%w: index 0 is reserved", ErrInvalidShare)
	}
	out := make([]byte, EncodedSize(len(s.Value)))
	out[0] = s.Index
	copy(out[1:], s.Value)
	return out, nil
}

// ParseShare decodes a share produced by MarshalBinary. The returned share
// does not alias b.
func ParseShare(b []byte) (Share, error) {
	if len(b) < 2 {
		return Share{}, fmt.Errorf("%w: encoded share too short (%d bytes)", ErrInvalidShare, len(b))
	}
	if b[0] == 0 {
		return Share{}, fmt.Errorf("%w: index 0 is reserved", ErrInvalidShare)
	}
	value := make([]byte, len(b)-1)
	copy(value, b[1:])
	return Share{Index: b[0], Value: value}, nil
}

// String returns a representation that does not reveal the share value.
func (s Share) String() string {
	return fmt.Sprintf("Share{Index: %d, Size: %d}", s.Index, len(s.Value))
}
