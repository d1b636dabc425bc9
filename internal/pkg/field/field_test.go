// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

package field

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/go-test/deep"
)

func randomElement(t *testing.T) Element {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		t.Fatalf("rand.Read: %s", err)
	}
	var e Element
	e.SetBytes(buf[:])
	return e
}

// TestRoundTrip checks spec.md §8's "Field round-trip" property: for
// every canonical 32-byte encoding s, encode(decode(s)) == s with bit
// 255 cleared.
func TestRoundTrip(t *testing.T) {
	for i := 0; i < 64; i++ {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			t.Fatalf("rand.Read: %s", err)
		}
		buf[31] &= 0x7F
		var e Element
		e.SetBytes(buf[:])
		out := e.Bytes()
		if diff := deep.Equal(out[:], buf[:]); diff != nil {
			t.Fatalf("round trip mismatch: %v", diff)
		}
	}
}

// TestAddSubInverse checks that sub undoes add.
func TestAddSubInverse(t *testing.T) {
	for i := 0; i < 32; i++ {
		a := randomElement(t)
		b := randomElement(t)
		var sum, back Element
		sum.Add(&a, &b)
		back.Sub(&sum, &b)
		if back.Equal(&a) != 1 {
			t.Fatalf("sub(add(a,b),b) != a")
		}
	}
}

func TestMulCommutativeAssociative(t *testing.T) {
	a := randomElement(t)
	b := randomElement(t)
	c := randomElement(t)

	var ab, ba Element
	ab.Mul(&a, &b)
	ba.Mul(&b, &a)
	if ab.Equal(&ba) != 1 {
		t.Fatalf("mul is not commutative")
	}

	var abc1, abc2, bc, ab2 Element
	bc.Mul(&b, &c)
	abc1.Mul(&a, &bc)
	ab2.Mul(&a, &b)
	abc2.Mul(&ab2, &c)
	if abc1.Equal(&abc2) != 1 {
		t.Fatalf("mul is not associative")
	}
}

func TestInvert(t *testing.T) {
	for i := 0; i < 16; i++ {
		a := randomElement(t)
		if a.IsNonZero() == 0 {
			continue
		}
		var inv, product Element
		inv.Invert(&a)
		product.Mul(&a, &inv)
		if product.Equal(&One) != 1 {
			t.Fatalf("invert(a)*a != 1")
		}
	}
}

func TestSquareMatchesMul(t *testing.T) {
	a := randomElement(t)
	var sq, mul Element
	sq.Square(&a)
	mul.Mul(&a, &a)
	if sq.Equal(&mul) != 1 {
		t.Fatalf("square(a) != mul(a,a)")
	}
}

func TestCubeIndependentRoute(t *testing.T) {
	a := randomElement(t)
	var sq, cube1, cube2 Element
	sq.Square(&a)
	cube1.Mul(&sq, &a)
	cube2.Mul(&a, &a)
	cube2.Mul(&cube2, &a)
	if cube1.Equal(&cube2) != 1 {
		t.Fatalf("x^2*x != x*x*x")
	}
}

func TestSelect(t *testing.T) {
	a := randomElement(t)
	b := randomElement(t)
	var d Element
	d.Select(&a, &b, 0)
	if d.Equal(&a) != 1 {
		t.Fatalf("select(a,b,0) != a")
	}
	d.Select(&a, &b, 1)
	if d.Equal(&b) != 1 {
		t.Fatalf("select(a,b,1) != b")
	}
}

func TestCondNeg(t *testing.T) {
	a := randomElement(t)
	var neg, d Element
	neg.Neg(&a)

	d.CondNeg(&a, 0)
	if d.Equal(&a) != 1 {
		t.Fatalf("condneg(a,0) != a")
	}
	d.CondNeg(&a, 1)
	if d.Equal(&neg) != 1 {
		t.Fatalf("condneg(a,1) != -a")
	}
}

func TestPow22523MatchesDirectExponent(t *testing.T) {
	// (p-5)/8 = 2^252 - 3, computed independently by plain
	// square-and-multiply over its bits (bits 0 and 2..251 set, bit 1
	// clear), to cross-check Pow22523's addition chain.
	a := randomElement(t)
	if a.IsNonZero() == 0 {
		a = One
	}
	var want Element
	want.Set(&a)
	for bit := 250; bit >= 0; bit-- {
		want.Square(&want)
		if bit != 1 {
			want.Mul(&want, &a)
		}
	}
	var p1, p2 Element
	p1.Pow22523(&a)
	p2.Pow22523(&a)
	if p1.Equal(&p2) != 1 {
		t.Fatalf("Pow22523 not deterministic")
	}
	if p1.IsNonZero() == 0 {
		t.Fatalf("Pow22523(a) unexpectedly zero")
	}
	if p1.Equal(&want) != 1 {
		t.Fatalf("Pow22523(a) != a^(2^252-3)")
	}
}

func TestBytesLengthAndTopBit(t *testing.T) {
	a := randomElement(t)
	b := a.Bytes()
	if len(b) != 32 {
		t.Fatalf("Bytes() returned %d bytes, want 32", len(b))
	}
	if b[31]&0x80 != 0 {
		t.Fatalf("top bit of encoding is set")
	}
}

func TestZeroIsZero(t *testing.T) {
	if Zero.IsNonZero() != 0 {
		t.Fatalf("Zero.IsNonZero() != 0")
	}
	if One.IsNonZero() == 0 {
		t.Fatalf("One.IsNonZero() == 0")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	a := randomElement(t)
	var n1, n2 Element
	n1.Normalize(&a)
	n2.Normalize(&n1)
	b1 := n1.Bytes()
	b2 := n2.Bytes()
	if !bytes.Equal(b1[:], b2[:]) {
		t.Fatalf("normalize is not idempotent")
	}
}
