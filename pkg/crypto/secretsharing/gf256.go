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

// GF(256) arithmetic using AES's finite field representation.
// The field is defined by the irreducible polynomial x^8 + x^4 + x^3 + x + 1.
//
// None of the operations below branch on or index memory by their operands.
// Lookup tables would leak secret bytes through cache timing, so
// multiplication is done with masks and inversion with a fixed
// exponentiation chain.

// gfAdd performs addition in GF(256), which is XOR.
func gfAdd(a, b byte) byte {
	return a ^ b
}

// gfSub performs subtraction in GF(256), which is also XOR.
func gfSub(a, b byte) byte {
	return a ^ b
}

// gfMul performs multiplication in GF(256) using the peasant algorithm.
// Every iteration executes the same instructions regardless of a and b.
func gfMul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		// -(b & 1) is 0xFF when the low bit of b is set, 0x00 otherwise.
		p ^= -(b & 1) & a
		carry := -(a >> 7)
		a = (a << 1) ^ (carry & 0x1B)
		b >>= 1
	}
	return p
}

// gfInverse computes the multiplicative inverse in GF(256) as a^254.
// The inverse of 0 is defined as 0, which keeps the function total.
func gfInverse(a byte) byte {
	// 254 = 2 + 4 + 8 + 16 + 32 + 64 + 128
	var result byte = 1
	square := a
	for i := 0; i < 7; i++ {
		square = gfMul(square, square)
		result = gfMul(result, square)
	}
	return result
}

// gfDiv divides a by b in GF(256).
func gfDiv(a, b byte) byte {
	return gfMul(a, gfInverse(b))
}

// evaluatePolynomial evaluates a polynomial at point x in GF(256).
// Uses Horner's method: p(x) = a0 + x(a1 + x(a2 + ... + x*an))
func evaluatePolynomial(coeffs []byte, x byte) byte {
	if len(coeffs) == 0 {
		return 0
	}

	result := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = gfAdd(gfMul(result, x), coeffs[i])
	}
	return result
}
