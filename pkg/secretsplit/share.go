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

package secretsplit

import (
	"fmt"

	"github.com/jeremyhahn/go-secretsplit/pkg/crypto/chacha20poly1305"
	"github.com/jeremyhahn/go-secretsplit/pkg/crypto/secretsharing"
)

const (
	// KeySize is the size of the one-time payload key.
	KeySize = chacha20poly1305.KeySize

	// KeyShareSize is the size of the key share prefix of every Share:
	// one index byte followed by KeySize value bytes.
	KeyShareSize = 1 + KeySize

	// NonceSize is the size of the fixed all-zero nonce.
	NonceSize = chacha20poly1305.NonceSize

	// MaxShares is the largest n a split supports.
	MaxShares = secretsharing.MaxShares
)

// Share is one participant's piece of a split payload:
// KeyShare() || Ciphertext().
type Share []byte

// KeyShare returns the encoded key share prefix, or nil if the share is
// shorter than KeyShareSize.
func (s Share) KeyShare() []byte {
	if len(s) < KeyShareSize {
		return nil
	}
	return s[:KeyShareSize]
}

// Ciphertext returns the compressed and encrypted payload suffix, or nil
// if the share is shorter than KeyShareSize.
func (s Share) Ciphertext() []byte {
	if len(s) < KeyShareSize {
		return nil
	}
	return s[KeyShareSize:]
}

// Index returns the share's evaluation point, or 0 for a share too short
// to carry one.
func (s Share) Index() byte {
	if len(s) < KeyShareSize {
		return 0
	}
	return s[0]
}

// String returns a representation that does not reveal share contents.
func (s Share) String() string {
	return fmt.Sprintf("Share{Index: %d, Size: %d}", s.Index(), len(s))
}

func newShare(keyShare secretsharing.Share, ciphertext []byte) (Share, error) {
	encoded, err := keyShare.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if len(encoded) != KeyShareSize {
		return nil, fmt.Errorf("unexpected key share size %d (want %d)", len(encoded), KeyShareSize)
	}
	share := make(Share, 0, len(encoded)+len(ciphertext))
	share = append(share, encoded...)
	return append(share, ciphertext...), nil
}
