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

// Package chacha20poly1305 wraps the ChaCha20-Poly1305 AEAD with the key
// handling used by the share splitter: one-time keys, a fixed zero nonce,
// typed authentication errors and key zeroization.
package chacha20poly1305

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/jeremyhahn/go-secretsplit/pkg/crypto/aead"
)

const (
	// KeySize is the ChaCha20-Poly1305 key size in bytes.
	KeySize = chacha20poly1305.KeySize

	// NonceSize is the standard (non-X) nonce size in bytes.
	NonceSize = chacha20poly1305.NonceSize

	// Overhead is the Poly1305 tag size appended by Seal.
	Overhead = chacha20poly1305.Overhead
)

var (
	// ErrInvalidKeySize is returned when a key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.New("chacha20poly1305: invalid key size")

	// ErrInvalidNonceSize is returned when a nonce is not exactly NonceSize bytes.
	ErrInvalidNonceSize = errors.New("chacha20poly1305: invalid nonce size")

	// ErrAuthenticationFailed is returned by Open when the tag does not
	// verify: the ciphertext was modified or the key is wrong.
	ErrAuthenticationFailed = errors.New("chacha20poly1305: message authentication failed")
)

// AEAD provides ChaCha20-Poly1305 authenticated encryption with associated data.
//
// ChaCha20-Poly1305 provides:
// - 256-bit key security
// - 96-bit (12-byte) nonces
// - 128-bit (16-byte) authentication tags
// - Constant-time implementation without AES hardware
type AEAD interface {
	// Seal encrypts and authenticates plaintext and returns
	// ciphertext || tag.
	Seal(nonce, plaintext, additionalData []byte) ([]byte, error)

	// Open verifies the tag and decrypts ciphertext || tag.
	// Returns ErrAuthenticationFailed if verification fails.
	Open(nonce, ciphertextWithTag, additionalData []byte) ([]byte, error)

	// NonceSize returns the nonce size (12 bytes).
	NonceSize() int

	// Overhead returns the authentication tag overhead (16 bytes).
	Overhead() int
}

type chacha20poly1305AEAD struct {
	aead   cipher.AEAD
	nonces *aead.NonceTracker
}

// New creates a new ChaCha20-Poly1305 AEAD cipher with the given key.
// The key must be exactly 32 bytes (256 bits). The cipher keeps its own
// expanded copy of the key, so the caller may zeroize key afterwards.
func New(key []byte) (AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: %d bytes (must be %d bytes)", ErrInvalidKeySize, len(key), KeySize)
	}

	c, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &chacha20poly1305AEAD{aead: c, nonces: aead.NewNonceTracker()}, nil
}

// Seal encrypts plaintext under nonce.
//
// A nonce already sealed by this cipher returns aead.ErrNonceReuse. Callers
// using ZeroNonce must use each key for exactly one Seal.
func (c *chacha20poly1305AEAD) Seal(nonce, plaintext, additionalData []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, fmt.Errorf("%w: %d bytes (must be %d bytes)", ErrInvalidNonceSize, len(nonce), c.aead.NonceSize())
	}
	if err := c.nonces.CheckAndRecordNonce(nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nil, nonce, plaintext, additionalData), nil
}

// Open verifies and decrypts ciphertextWithTag. Authentication is checked
// before any plaintext is released.
func (c *chacha20poly1305AEAD) Open(nonce, ciphertextWithTag, additionalData []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, fmt.Errorf("%w: %d bytes (must be %d bytes)", ErrInvalidNonceSize, len(nonce), c.aead.NonceSize())
	}
	if len(ciphertextWithTag) < c.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short (%d bytes)", ErrAuthenticationFailed, len(ciphertextWithTag))
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertextWithTag, additionalData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	return plaintext, nil
}

func (c *chacha20poly1305AEAD) NonceSize() int {
	return c.aead.NonceSize()
}

func (c *chacha20poly1305AEAD) Overhead() int {
	return c.aead.Overhead()
}

// GenerateKey reads a new 256-bit key from r. A nil r uses crypto/rand.
func GenerateKey(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// ZeroNonce returns the all-zero 12-byte nonce.
//
// It is only safe with a key that is used for a single Seal. If a key ever
// encrypts more than one message, switch to random nonces.
func ZeroNonce() []byte {
	return make([]byte, NonceSize)
}

// Zeroize overwrites key material with zeros.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
