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

import "errors"

var (
	// ErrInvalidParameters is returned when n or k is out of range
	// (k = 0, n = 0 or k > n), or when Combine is given no shares.
	ErrInvalidParameters = errors.New("secretsplit: invalid parameters")

	// ErrMalformedShare is returned for a share shorter than KeyShareSize,
	// a key share with a reserved or duplicate index, or a share whose text
	// encoding cannot be decoded.
	ErrMalformedShare = errors.New("secretsplit: malformed share")

	// ErrInconsistentShares is returned when the ciphertext suffixes of the
	// supplied shares differ. The shares come from different splits or were
	// corrupted.
	ErrInconsistentShares = errors.New("secretsplit: inconsistent shares")

	// ErrAuthenticationFailure is returned when the ciphertext does not
	// authenticate under the reconstructed key: the data was tampered with,
	// or the key shares are wrong or fewer than the threshold.
	ErrAuthenticationFailure = errors.New("secretsplit: authentication failure")

	// ErrDecompression is returned when authenticated plaintext is not a
	// valid compressed stream.
	ErrDecompression = errors.New("secretsplit: decompression error")
)

// Error kinds reported by ErrorKind.
const (
	KindInvalidParameters     = "invalid_parameters"
	KindMalformedShare        = "malformed_share"
	KindInconsistentShares    = "inconsistent_shares"
	KindAuthenticationFailure = "authentication_failure"
	KindDecompression         = "decompression_error"
	KindInternal              = "internal"
)

// ErrorKind returns a stable snake_case label for err, suitable for metrics
// labels and machine-readable output. It returns "" for a nil error and
// KindInternal for errors outside the taxonomy, such as an RNG failure.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidParameters):
		return KindInvalidParameters
	case errors.Is(err, ErrMalformedShare):
		return KindMalformedShare
	case errors.Is(err, ErrInconsistentShares):
		return KindInconsistentShares
	case errors.Is(err, ErrAuthenticationFailure):
		return KindAuthenticationFailure
	case errors.Is(err, ErrDecompression):
		return KindDecompression
	default:
		return KindInternal
	}
}
