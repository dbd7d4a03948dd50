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

import "testing"

// referenceMul is the branchy textbook multiplication, used only to check
// the masked implementation.
func referenceMul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= 0x1B
		}
		b >>= 1
	}
	return p
}

func TestGFMulKnownValues(t *testing.T) {
	tests := []struct {
		a, b, want byte
	}{
		{0x57, 0x83, 0xC1}, // FIPS-197 section 4.2
		{0x57, 0x13, 0xFE}, // FIPS-197 section 4.2.1
		{0x53, 0xCA, 0x01},
		{0x00, 0xFF, 0x00},
		{0x01, 0xAB, 0xAB},
	}

	for _, tt := range tests {
		if got := gfMul(tt.a, tt.b); got != tt.want {
			t.Errorf("gfMul(%#02x, %#02x) = %#02x, want %#02x", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestGFMulMatchesReference(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			got := gfMul(byte(a), byte(b))
			want := referenceMul(byte(a), byte(b))
			if got != want {
				t.Fatalf("gfMul(%#02x, %#02x) = %#02x, want %#02x", a, b, got, want)
			}
		}
	}
}

func TestGFInverse(t *testing.T) {
	if got := gfInverse(0); got != 0 {
		t.Errorf("gfInverse(0) = %#02x, want 0", got)
	}
	for a := 1; a < 256; a++ {
		inv := gfInverse(byte(a))
		if gfMul(byte(a), inv) != 1 {
			t.Fatalf("%#02x * gfInverse(%#02x) = %#02x, want 1", a, a, gfMul(byte(a), inv))
		}
	}
}

func TestGFDiv(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 1; b < 256; b++ {
			q := gfDiv(byte(a), byte(b))
			if gfMul(q, byte(b)) != byte(a) {
				t.Fatalf("gfDiv(%#02x, %#02x) * %#02x != %#02x", a, b, b, a)
			}
		}
	}
}

func TestEvaluatePolynomial(t *testing.T) {
	// p(x) = 7 + 3x + x^2
	coeffs := []byte{7, 3, 1}
	if got := evaluatePolynomial(coeffs, 0); got != 7 {
		t.Errorf("p(0) = %d, want 7", got)
	}

	x := byte(5)
	want := gfAdd(gfAdd(7, gfMul(3, x)), gfMul(x, x))
	if got := evaluatePolynomial(coeffs, x); got != want {
		t.Errorf("p(5) = %d, want %d", got, want)
	}

	if got := evaluatePolynomial(nil, 9); got != 0 {
		t.Errorf("empty polynomial evaluated to %d, want 0", got)
	}
}
