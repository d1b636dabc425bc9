// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

package curve

import (
	"testing"

	"github.com/MuntashirAkon/spake2-go/internal/pkg/field"
)

// doubleAndAddVartime computes s*p by plain non-constant-time
// double-and-add, processing bits LSB first. It exists only as an
// independent route to cross-check the table-driven multiplies in
// tables_test.go; it must never be used for secret scalars.
func doubleAndAddVartime(p *P3, s *[32]byte) P3 {
	acc := Identity()
	base := *p
	for i := 0; i < 256; i++ {
		byteOff := i / 8
		bitOff := uint(i % 8)
		if (s[byteOff]>>bitOff)&1 == 1 {
			cached := p3ToCached(&base)
			p1p1 := add(&acc, &cached)
			acc = p1p1ToP3(&p1p1)
		}
		dbl := p3Dbl(&base)
		base = p1p1ToP3(&dbl)
	}
	return acc
}

func TestIdentityIsNeutral(t *testing.T) {
	id := Identity()
	cached := p3ToCached(&B)
	sum1p1 := add(&id, &cached)
	sum := p1p1ToP3(&sum1p1)
	if sum.Equal(&B) != 1 {
		t.Fatalf("identity + B != B")
	}
}

func TestAddSubInverse(t *testing.T) {
	two := p3Dbl(&B)
	twoB := p1p1ToP3(&two)
	cached := p3ToCached(&B)

	added := add(&twoB, &cached)
	addedP3 := p1p1ToP3(&added)
	subbed := sub(&addedP3, &cached)
	subbedP3 := p1p1ToP3(&subbed)
	if subbedP3.Equal(&twoB) != 1 {
		t.Fatalf("sub(add(2B,B),B) != 2B")
	}
}

func TestDoublingMatchesSelfAddition(t *testing.T) {
	dbl := p3Dbl(&B)
	dblP3 := p1p1ToP3(&dbl)

	cached := p3ToCached(&B)
	added := add(&B, &cached)
	addedP3 := p1p1ToP3(&added)

	if dblP3.Equal(&addedP3) != 1 {
		t.Fatalf("p3Dbl(B) != add(B,B)")
	}
}

func TestMaddMatchesAdd(t *testing.T) {
	two := p3Dbl(&B)
	twoB := p1p1ToP3(&two)

	cached := p3ToCached(&B)
	viaAdd := add(&twoB, &cached)
	viaAddP3 := p1p1ToP3(&viaAdd)

	precomp := toPrecomp(&B)
	viaMadd := madd(&twoB, &precomp)
	viaMaddP3 := p1p1ToP3(&viaMadd)

	if viaAddP3.Equal(&viaMaddP3) != 1 {
		t.Fatalf("madd(2B,precomp(B)) != add(2B,cached(B))")
	}
}

func TestMsubMatchesSub(t *testing.T) {
	two := p3Dbl(&B)
	twoB := p1p1ToP3(&two)

	cached := p3ToCached(&B)
	viaSub := sub(&twoB, &cached)
	viaSubP3 := p1p1ToP3(&viaSub)

	precomp := toPrecomp(&B)
	viaMsub := msub(&twoB, &precomp)
	viaMsubP3 := p1p1ToP3(&viaMsub)

	if viaSubP3.Equal(&viaMsubP3) != 1 {
		t.Fatalf("msub(2B,precomp(B)) != sub(2B,cached(B))")
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	two := p3Dbl(&B)
	twoB := p1p1ToP3(&two)
	enc := twoB.Bytes()

	// FromBytesNegateVartime returns -P by contract; negate back to
	// compare against the original point.
	decoded, ok := FromBytesNegateVartime(enc[:])
	if !ok {
		t.Fatalf("decode of a valid point failed")
	}
	var negX, negT field.Element
	negX.Neg(&decoded.X)
	negT.Neg(&decoded.T)
	recovered := P3{X: negX, Y: decoded.Y, Z: decoded.Z, T: negT}
	if recovered.Equal(&twoB) != 1 {
		t.Fatalf("decode(encode(2B)) negated back != 2B")
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	// y = 2 gives a u/v that is not a square mod p, so no x exists.
	var buf [32]byte
	buf[0] = 2
	if _, ok := FromBytesNegateVartime(buf[:]); ok {
		t.Fatalf("decoding y = 2, which is not on the curve, unexpectedly succeeded")
	}
}

func TestPrecompCondNegate(t *testing.T) {
	pc := toPrecomp(&B)
	negated := pc
	negated.CondNegate(1)

	var wantYPlusX, wantYMinusX, wantXY2D field.Element
	wantYPlusX = pc.YMinusX
	wantYMinusX = pc.YPlusX
	wantXY2D.Neg(&pc.XY2D)

	if negated.YPlusX.Equal(&wantYPlusX) != 1 ||
		negated.YMinusX.Equal(&wantYMinusX) != 1 ||
		negated.XY2D.Equal(&wantXY2D) != 1 {
		t.Fatalf("CondNegate(1) did not negate the affine point")
	}

	unchanged := pc
	unchanged.CondNegate(0)
	if unchanged.YPlusX.Equal(&pc.YPlusX) != 1 {
		t.Fatalf("CondNegate(0) modified the point")
	}
}
