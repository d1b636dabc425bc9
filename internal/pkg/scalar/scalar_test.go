// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

package scalar

import (
	"encoding/hex"
	"testing"

	"github.com/go-test/deep"
)

func hexScalar(t *testing.T, s string) Scalar {
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex.DecodeString(%q): %s", s, err)
	}
	return FromBytes32(b)
}

// TestDoubleVector checks spec.md §8 scenario 2: doubling the
// little-endian encoding of ell.
func TestDoubleVector(t *testing.T) {
	s := hexScalar(t, "edd3f55c1a631258d69cf7a2def9de1400000000000000000000000000000010")
	want := hexScalar(t, "daa7ebb934c624b0ac39ef45bdf3bd2900000000000000000000000000000020")

	var got Scalar
	got.Double(&s)
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("double(ell) mismatch: %v", diff)
	}
}

func TestDoubleVectorSmall(t *testing.T) {
	var s, want Scalar
	s[0] = 0x08
	want[0] = 0x10

	var got Scalar
	got.Double(&s)
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("double(08..) mismatch: %v", diff)
	}
}

// TestCMoveVectors checks spec.md §8 scenario 3's concrete cmov
// vectors: cmov(ell, zero, mask) for mask = 0x11 and mask = 0xF9.
func TestCMoveVectors(t *testing.T) {
	ellScalar := hexScalar(t, "edd3f55c1a631258d69cf7a2def9de1400000000000000000000000000000010")
	var zero Scalar

	cases := []struct {
		mask uint32
		want [4]byte // the first 4 bytes; bytes 4, 8 and 12 are set below, the rest are zero
	}{
		{0x11, [4]byte{0x01, 0x00, 0x00, 0x00}},
		{0xF9, [4]byte{0xe9, 0x00, 0x00, 0x00}},
	}
	// Only the mask's low byte is non-zero, so only bytes 0, 4, 8, ...
	// can survive. Bytes 4, 8 and 12 carry ell's byte at that offset
	// (0x1a, 0xd6, 0xde respectively) ANDed with the mask's low byte;
	// ell's bytes 16..30 are zero, and byte 31 (0x10) sits under a zero
	// mask byte, so bytes 16..31 of the result are zero.
	group1 := map[uint32]byte{0x11: 0x10, 0xF9: 0x18}
	group2 := map[uint32]byte{0x11: 0x10, 0xF9: 0xd0}
	group3 := map[uint32]byte{0x11: 0x10, 0xF9: 0xd8}

	for _, c := range cases {
		var want Scalar
		copy(want[0:4], c.want[:])
		want[4] = group1[c.mask]
		want[8] = group2[c.mask]
		want[12] = group3[c.mask]

		var got Scalar
		got.CMove(&ellScalar, &zero, c.mask)
		if diff := deep.Equal(got, want); diff != nil {
			t.Fatalf("cmov(ell,zero,%#x) mismatch: %v", c.mask, diff)
		}
	}
}

func TestCMoveFullMaskSelectsOperands(t *testing.T) {
	a := hexScalar(t, "edd3f55c1a631258d69cf7a2def9de1400000000000000000000000000000010")
	b := hexScalar(t, "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	var got Scalar
	got.CMove(&a, &b, 0xFFFFFFFF)
	if diff := deep.Equal(got, a); diff != nil {
		t.Fatalf("cmov(a,b,0xFFFFFFFF) != a: %v", diff)
	}

	got.CMove(&a, &b, 0)
	if diff := deep.Equal(got, b); diff != nil {
		t.Fatalf("cmov(a,b,0) != b: %v", diff)
	}
}

func TestLeftShift3(t *testing.T) {
	var s [32]byte
	s[0] = 1
	LeftShift3(&s)
	if s[0] != 8 {
		t.Fatalf("leftShift3(1) = %d, want 8", s[0])
	}

	var s2 [32]byte
	s2[0] = 0xFF
	LeftShift3(&s2)
	if s2[0] != 0xF8 || s2[1] != 0x07 {
		t.Fatalf("leftShift3(0xFF) = [%x %x], want [f8 07]", s2[0], s2[1])
	}
}

func TestReduceSmallValueIsIdentity(t *testing.T) {
	var x [64]byte
	x[0] = 42
	got := Reduce(&x)
	if got[0] != 42 {
		t.Fatalf("reduce(42) byte0 = %d, want 42", got[0])
	}
	for i := 1; i < 32; i++ {
		if got[i] != 0 {
			t.Fatalf("reduce(42) byte%d = %d, want 0", i, got[i])
		}
	}
}

func TestReduceEllIsZero(t *testing.T) {
	var x [64]byte
	copy(x[:32], EllBytes[:])
	got := Reduce(&x)
	for i := 0; i < 32; i++ {
		if got[i] != 0 {
			t.Fatalf("reduce(ell) byte%d = %d, want 0", i, got[i])
		}
	}
}

func TestReduceIsBelowEll(t *testing.T) {
	var x [64]byte
	for i := range x {
		x[i] = 0xFF
	}
	got := Reduce(&x)
	// got must be strictly less than ell as 256-bit little-endian
	// integers: compare from the most significant byte down.
	less := false
	for i := 31; i >= 0; i-- {
		if got[i] < EllBytes[i] {
			less = true
			break
		}
		if got[i] > EllBytes[i] {
			t.Fatalf("reduce(0xFF...FF) >= ell")
		}
	}
	if !less {
		t.Fatalf("reduce(0xFF...FF) == ell, want < ell")
	}
}
