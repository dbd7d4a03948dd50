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

package chacha20poly1305

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/jeremyhahn/go-secretsplit/pkg/crypto/aead"
)

func TestNew(t *testing.T) {
	t.Run("valid 32-byte key", func(t *testing.T) {
		key, err := GenerateKey(nil)
		require.NoError(t, err)

		cipher, err := New(key)
		require.NoError(t, err)
		require.NotNil(t, cipher)

		assert.Equal(t, 12, cipher.NonceSize())
		assert.Equal(t, 16, cipher.Overhead())
	})

	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := New(make([]byte, size))
		assert.ErrorIs(t, err, ErrInvalidKeySize, "key size %d", size)
	}
}

func newCipher(t *testing.T, key []byte) AEAD {
	t.Helper()
	cipher, err := New(key)
	require.NoError(t, err)
	return cipher
}

func TestSealOpen(t *testing.T) {
	key, err := GenerateKey(nil)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		cipher := newCipher(t, key)
		plaintext := []byte("Hello, ChaCha20-Poly1305!")

		sealed, err := cipher.Seal(ZeroNonce(), plaintext, nil)
		require.NoError(t, err)
		assert.Len(t, sealed, len(plaintext)+Overhead)
		assert.NotEqual(t, plaintext, sealed[:len(plaintext)])

		opened, err := cipher.Open(ZeroNonce(), sealed, nil)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	})

	t.Run("empty plaintext", func(t *testing.T) {
		cipher := newCipher(t, key)
		sealed, err := cipher.Seal(ZeroNonce(), nil, nil)
		require.NoError(t, err)
		assert.Len(t, sealed, Overhead)

		opened, err := cipher.Open(ZeroNonce(), sealed, nil)
		require.NoError(t, err)
		assert.Empty(t, opened)
	})

	t.Run("deterministic for fixed inputs", func(t *testing.T) {
		a, err := newCipher(t, key).Seal(ZeroNonce(), []byte("same"), nil)
		require.NoError(t, err)
		b, err := newCipher(t, key).Seal(ZeroNonce(), []byte("same"), nil)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("matches x/crypto", func(t *testing.T) {
		ref, err := chacha20poly1305.New(key)
		require.NoError(t, err)

		plaintext := []byte("interoperable")
		sealed, err := newCipher(t, key).Seal(ZeroNonce(), plaintext, []byte("ad"))
		require.NoError(t, err)
		assert.Equal(t, ref.Seal(nil, ZeroNonce(), plaintext, []byte("ad")), sealed)
	})

	t.Run("nonce reuse rejected", func(t *testing.T) {
		cipher := newCipher(t, key)
		_, err := cipher.Seal(ZeroNonce(), []byte("first"), nil)
		require.NoError(t, err)

		_, err = cipher.Seal(ZeroNonce(), []byte("second"), nil)
		assert.ErrorIs(t, err, aead.ErrNonceReuse)

		nonce := ZeroNonce()
		nonce[0] = 1
		_, err = cipher.Seal(nonce, []byte("second"), nil)
		assert.NoError(t, err)
	})

	t.Run("invalid nonce size", func(t *testing.T) {
		cipher := newCipher(t, key)
		_, err := cipher.Seal(make([]byte, 24), []byte("x"), nil)
		assert.ErrorIs(t, err, ErrInvalidNonceSize)

		_, err = cipher.Open(make([]byte, 8), make([]byte, 32), nil)
		assert.ErrorIs(t, err, ErrInvalidNonceSize)
	})
}

func TestOpenAuthenticationFailure(t *testing.T) {
	key, err := GenerateKey(nil)
	require.NoError(t, err)
	cipher, err := New(key)
	require.NoError(t, err)

	plaintext := []byte("Secret message")
	sealed, err := cipher.Seal(ZeroNonce(), plaintext, []byte("context"))
	require.NoError(t, err)

	t.Run("every flipped bit is detected", func(t *testing.T) {
		for i := 0; i < len(sealed)*8; i++ {
			tampered := bytes.Clone(sealed)
			tampered[i/8] ^= 1 << (i % 8)

			_, err := cipher.Open(ZeroNonce(), tampered, []byte("context"))
			require.ErrorIs(t, err, ErrAuthenticationFailed, "bit %d", i)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		otherKey, err := GenerateKey(nil)
		require.NoError(t, err)
		other, err := New(otherKey)
		require.NoError(t, err)

		_, err = other.Open(ZeroNonce(), sealed, []byte("context"))
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("wrong additional data", func(t *testing.T) {
		_, err := cipher.Open(ZeroNonce(), sealed, []byte("other"))
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("truncated below tag size", func(t *testing.T) {
		_, err := cipher.Open(ZeroNonce(), sealed[:Overhead-1], nil)
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey(nil)
	require.NoError(t, err)
	b, err := GenerateKey(nil)
	require.NoError(t, err)

	assert.Len(t, a, KeySize)
	assert.NotEqual(t, a, b, "two generated keys must differ")

	fixed, err := GenerateKey(bytes.NewReader(bytes.Repeat([]byte{7}, KeySize)))
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{7}, KeySize), fixed)

	_, err = GenerateKey(bytes.NewReader(make([]byte, KeySize-1)))
	assert.Error(t, err, "short entropy source must fail")
	assert.False(t, errors.Is(err, ErrAuthenticationFailed))
}

func TestZeroNonce(t *testing.T) {
	n := ZeroNonce()
	assert.Equal(t, make([]byte, NonceSize), n)

	// Each call returns a fresh slice.
	n[0] = 1
	assert.Equal(t, byte(0), ZeroNonce()[0])
}

func TestZeroize(t *testing.T) {
	key := bytes.Repeat([]byte{0xAA}, KeySize)
	Zeroize(key)
	assert.Equal(t, make([]byte, KeySize), key)
}

func TestZeroizeAfterNewKeepsCipherUsable(t *testing.T) {
	key, err := GenerateKey(nil)
	require.NoError(t, err)
	cipher, err := New(key)
	require.NoError(t, err)

	sealed, err := cipher.Seal(ZeroNonce(), []byte("payload"), nil)
	require.NoError(t, err)

	Zeroize(key)

	opened, err := cipher.Open(ZeroNonce(), sealed, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), opened)
}
