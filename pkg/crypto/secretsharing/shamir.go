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

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"
)

// MaxShares is the largest number of shares a single split can produce.
// Share indices are the non-zero elements of GF(256).
const MaxShares = 255

var (
	// ErrInvalidParameters is returned when the threshold or share count
	// violates 1 <= threshold <= total <= 255.
	ErrInvalidParameters = errors.New("secretsharing: invalid parameters")

	// ErrEmptySecret is returned when splitting a zero-length secret.
	ErrEmptySecret = errors.New("secretsharing: secret cannot be empty")

	// ErrInvalidShare is returned by Combine and ParseShare for shares that
	// cannot take part in interpolation.
	ErrInvalidShare = errors.New("secretsharing: invalid share")
)

// ShareConfig configures secret sharing parameters.
type ShareConfig struct {
	Threshold   int // k - minimum shares needed to reconstruct
	TotalShares int // n - total shares to create

	// Random is the source of polynomial coefficients.
	// Defaults to crypto/rand.Reader.
	Random io.Reader
}

// Shamir implements Shamir's Secret Sharing Scheme using finite field
// arithmetic in GF(256).
type Shamir struct {
	threshold int
	total     int
	random    io.Reader
}

// NewShamir creates a new Shamir instance with the given configuration.
// Returns ErrInvalidParameters if the configuration is invalid.
func NewShamir(config *ShareConfig) (*Shamir, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config cannot be nil", ErrInvalidParameters)
	}
	if err := ValidateParameters(config.TotalShares, config.Threshold); err != nil {
		return nil, err
	}

	random := config.Random
	if random == nil {
		random = rand.Reader
	}

	return &Shamir{
		threshold: config.Threshold,
		total:     config.TotalShares,
		random:    random,
	}, nil
}

// ValidateParameters checks 1 <= k <= n <= 255.
func ValidateParameters(n, k int) error {
	if k < 1 {
		return fmt.Errorf("%w: threshold must be at least 1, got %d", ErrInvalidParameters, k)
	}
	if n < k {
		return fmt.Errorf("%w: total shares (%d) must be >= threshold (%d)", ErrInvalidParameters, n, k)
	}
	if n > MaxShares {
		return fmt.Errorf("%w: total shares must be <= %d, got %d", ErrInvalidParameters, MaxShares, n)
	}
	return nil
}

// Threshold returns the number of shares required to reconstruct.
func (s *Shamir) Threshold() int {
	return s.threshold
}

// TotalShares returns the number of shares produced by Split.
func (s *Shamir) TotalShares() int {
	return s.total
}

// Split divides a secret into n shares, any k of which reconstruct it.
//
// Each byte of the secret is the constant term of its own random polynomial
// of degree k-1. Share i holds the evaluations of all those polynomials at
// x = i, for i = 1..n.
func (s *Shamir) Split(secret []byte) ([]Share, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	shares := make([]Share, s.total)
	for i := range shares {
		shares[i].Index = byte(i + 1)
		shares[i].Value = make([]byte, len(secret))
	}

	// One buffer holds the k-1 random coefficients of every byte polynomial.
	degree := s.threshold - 1
	random := make([]byte, len(secret)*degree)
	defer wipe(random)
	if _, err := io.ReadFull(s.random, random); err != nil {
		return nil, fmt.Errorf("secretsharing: failed to generate random coefficients: %w", err)
	}

	coeffs := make([]byte, s.threshold)
	defer wipe(coeffs)

	for byteIdx := range secret {
		coeffs[0] = secret[byteIdx]
		copy(coeffs[1:], random[byteIdx*degree:(byteIdx+1)*degree])

		for i := range shares {
			shares[i].Value[byteIdx] = evaluatePolynomial(coeffs, shares[i].Index)
		}
	}

	return shares, nil
}

// Combine reconstructs a secret by Lagrange interpolation at x = 0.
//
// Combine has no notion of the threshold. Given k or more shares of one
// split it returns the secret. Given fewer, it still returns a value of the
// right length that is unrelated to the secret, and no error. Callers must
// detect a wrong result by other means, for example an authentication tag.
//
// Shares must be non-empty, have non-zero and distinct indices, and carry
// values of equal length; otherwise ErrInvalidShare is returned.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares provided", ErrInvalidShare)
	}

	secretLen := len(shares[0].Value)
	if secretLen == 0 {
		return nil, fmt.Errorf("%w: share 0 has empty value", ErrInvalidShare)
	}

	var seen [256]bool
	for i, share := range shares {
		if share.Index == 0 {
			return nil, fmt.Errorf("%w: share %d has invalid index 0", ErrInvalidShare, i)
		}
		if seen[share.Index] {
			return nil, fmt.Errorf("%w: share %d repeats index %d", ErrInvalidShare, i, share.Index)
		}
		seen[share.Index] = true
		if len(share.Value) != secretLen {
			return nil, fmt.Errorf("%w: share %d has length %d, expected %d",
				ErrInvalidShare, i, len(share.Value), secretLen)
		}
	}

	basis := lagrangeBasisAtZero(shares)
	secret := make([]byte, secretLen)
	for byteIdx := range secret {
		var acc byte
		for i := range shares {
			acc = gfAdd(acc, gfMul(shares[i].Value[byteIdx], basis[i]))
		}
		secret[byteIdx] = acc
	}

	return secret, nil
}

// lagrangeBasisAtZero returns l_i(0) for every share:
//
//	l_i(0) = prod_{j != i} x_j / (x_i - x_j)
//
// Subtraction is XOR, so 0 - x_j is x_j. The indices are public, so the
// basis is computed once and reused for every byte of the secret.
func lagrangeBasisAtZero(shares []Share) []byte {
	basis := make([]byte, len(shares))
	for i := range shares {
		xi := shares[i].Index
		var numerator, denominator byte = 1, 1
		for j := range shares {
			if i == j {
				continue
			}
			xj := shares[j].Index
			numerator = gfMul(numerator, xj)
			denominator = gfMul(denominator, gfSub(xi, xj))
		}
		basis[i] = gfDiv(numerator, denominator)
	}
	return basis
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
