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

// Package secretsharing implements Shamir's Secret Sharing Scheme.
//
// Shamir's Secret Sharing divides a secret into N shares, where any K shares
// (the threshold) reconstruct the original secret and K-1 or fewer shares
// reveal no information about it.
//
// # Mathematical Foundation
//
// Each secret byte is the constant term a0 of a polynomial of degree K-1:
//
//	p(x) = a0 + a1*x + a2*x^2 + ... + a(K-1)*x^(K-1)
//
// a1 through a(K-1) are drawn from a cryptographically secure source and
// share i is p(i). The secret is p(0), recovered by Lagrange interpolation.
//
// All arithmetic is performed in GF(2^8) with the AES polynomial (0x11B).
// Multiplication and inversion do not branch on, or index tables by, secret
// values.
//
// # Encoding
//
// A share encodes as one index byte followed by the share value, so a
// 32-byte secret yields 33-byte shares.
//
// # Under-threshold input
//
// Combine does not know the threshold and cannot tell when it was given too
// few shares. It then returns a well-formed value that is not the secret.
// Wrap the secret in something verifiable (an AEAD key, a MAC) when the
// caller must distinguish the two.
//
// # Usage Example
//
//	shamir, err := secretsharing.NewShamir(&secretsharing.ShareConfig{
//	    Threshold:   3,
//	    TotalShares: 5,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	shares, err := shamir.Split(secret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reconstructed, err := secretsharing.Combine(shares[:3])
//
// # Constraints
//
//   - 1 <= K <= N <= 255
//   - Share indices are bytes (1-255), index 0 is reserved for the secret
package secretsharing
