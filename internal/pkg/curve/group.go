// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

// Package curve implements the edwards25519 group layer of spec.md §4.D:
// the five point representations (P2, P3, P1P1, Precomp, Cached), the
// mixed-representation addition formulas between them, doubling, fixed-base
// and variable-base scalar multiplication, and point decompression.
package curve

import "github.com/MuntashirAkon/spake2-go/internal/pkg/field"

// P2 is the projective (X:Y:Z) representation, with affine coordinates
// x = X/Z, y = Y/Z.
type P2 struct {
	X, Y, Z field.Element
}

// P3 is the extended (X:Y:Z:T) representation, with the invariant
// X*Y = Z*T so that x = X/Z, y = Y/Z, x*y = T/Z.
type P3 struct {
	X, Y, Z, T field.Element
}

// P1P1 is the completed representation produced by an addition or
// doubling formula before it has been resolved into a P2 or P3.
type P1P1 struct {
	X, Y, Z, T field.Element
}

// Precomp holds a Duif-style affine precomputation of a point: y+x,
// y-x, and 2*d*x*y. It is used for fixed-base tables, where the base
// point is a public constant and the precomputation cost is amortized
// across many scalar multiplications.
type Precomp struct {
	YPlusX, YMinusX, XY2D field.Element
}

// Cached holds a projective precomputation of a point: Y+X, Y-X, Z,
// and 2*d*T. It is used for variable-base addition, where Z need not
// be 1.
type Cached struct {
	YPlusX, YMinusX, Z, T2D field.Element
}

// Identity returns the neutral element in P3 form: (0:1:1:0).
func Identity() P3 {
	return P3{X: field.Zero, Y: field.One, Z: field.One, T: field.Zero}
}

func p3ToP2(p *P3) P2 {
	return P2{X: p.X, Y: p.Y, Z: p.Z}
}

func p3ToCached(p *P3) Cached {
	var c Cached
	c.YPlusX.Add(&p.Y, &p.X)
	c.YMinusX.Sub(&p.Y, &p.X)
	c.Z = p.Z
	c.T2D.Mul(&p.T, &d2)
	return c
}

func p1p1ToP2(p *P1P1) P2 {
	var r P2
	r.X.Mul(&p.X, &p.T)
	r.Y.Mul(&p.Y, &p.Z)
	r.Z.Mul(&p.Z, &p.T)
	return r
}

func p1p1ToP3(p *P1P1) P3 {
	var r P3
	r.X.Mul(&p.X, &p.T)
	r.Y.Mul(&p.Y, &p.Z)
	r.Z.Mul(&p.Z, &p.T)
	r.T.Mul(&p.X, &p.Y)
	return r
}

func p1p1ToCached(p *P1P1) Cached {
	p3 := p1p1ToP3(p)
	return p3ToCached(&p3)
}

// p2Dbl doubles a point given in P2 form, returning the completed
// result. It is also used for P3 doubling, since T plays no role in
// the doubling formula.
func p2Dbl(p *P2) P1P1 {
	var trX, trZ, trT, rY, t0, rY2, rZ, rX, rT field.Element
	trX.Square(&p.X)
	trZ.Square(&p.Y)
	trT.SquareAndDouble(&p.Z)
	rY.Add(&p.X, &p.Y)
	t0.Square(&rY)
	rY2.Add(&trZ, &trX)
	rZ.Sub(&trZ, &trX)
	rX.Sub(&t0, &rY2)
	rT.Sub(&trT, &rZ)
	return P1P1{X: rX, Y: rY2, Z: rZ, T: rT}
}

func p3Dbl(p *P3) P1P1 {
	p2 := p3ToP2(p)
	return p2Dbl(&p2)
}

// madd adds a P3 point and a fixed-base Precomp point, returning the
// completed result (p + q).
func madd(p *P3, q *Precomp) P1P1 {
	var rX, rY, trZ, trY, trT, rT, rX2, rY2, rZ, rT2 field.Element
	rX.Add(&p.Y, &p.X)
	rY.Sub(&p.Y, &p.X)
	trZ.Mul(&rX, &q.YPlusX)
	trY.Mul(&rY, &q.YMinusX)
	trT.Mul(&q.XY2D, &p.T)
	rT.Add(&p.Z, &p.Z)
	rX2.Sub(&trZ, &trY)
	rY2.Add(&trZ, &trY)
	rZ.Add(&rT, &trT)
	rT2.Sub(&rT, &trT)
	return P1P1{X: rX2, Y: rY2, Z: rZ, T: rT2}
}

// msub subtracts a fixed-base Precomp point from a P3 point,
// returning the completed result (p - q).
func msub(p *P3, q *Precomp) P1P1 {
	var rX, rY, trZ, trY, trT, rT, rX2, rY2, rZ, rT2 field.Element
	rX.Add(&p.Y, &p.X)
	rY.Sub(&p.Y, &p.X)
	trZ.Mul(&rX, &q.YMinusX)
	trY.Mul(&rY, &q.YPlusX)
	trT.Mul(&q.XY2D, &p.T)
	rT.Add(&p.Z, &p.Z)
	rX2.Sub(&trZ, &trY)
	rY2.Add(&trZ, &trY)
	rZ.Sub(&rT, &trT)
	rT2.Add(&rT, &trT)
	return P1P1{X: rX2, Y: rY2, Z: rZ, T: rT2}
}

// add adds a P3 point and a variable-base Cached point, returning the
// completed result (p + q).
func add(p *P3, q *Cached) P1P1 {
	var rX, rY, trZ, trY, trT, trX, rT, rX2, rY2, rZ, rT2 field.Element
	rX.Add(&p.Y, &p.X)
	rY.Sub(&p.Y, &p.X)
	trZ.Mul(&rX, &q.YPlusX)
	trY.Mul(&rY, &q.YMinusX)
	trT.Mul(&q.T2D, &p.T)
	trX.Mul(&p.Z, &q.Z)
	rT.Add(&trX, &trX)
	rX2.Sub(&trZ, &trY)
	rY2.Add(&trZ, &trY)
	rZ.Add(&rT, &trT)
	rT2.Sub(&rT, &trT)
	return P1P1{X: rX2, Y: rY2, Z: rZ, T: rT2}
}

// sub subtracts a variable-base Cached point from a P3 point,
// returning the completed result (p - q).
func sub(p *P3, q *Cached) P1P1 {
	var rX, rY, trZ, trY, trT, trX, rT, rX2, rY2, rZ, rT2 field.Element
	rX.Add(&p.Y, &p.X)
	rY.Sub(&p.Y, &p.X)
	trZ.Mul(&rX, &q.YMinusX)
	trY.Mul(&rY, &q.YPlusX)
	trT.Mul(&q.T2D, &p.T)
	trX.Mul(&p.Z, &q.Z)
	rT.Add(&trX, &trX)
	rX2.Sub(&trZ, &trY)
	rY2.Add(&trZ, &trY)
	rZ.Sub(&rT, &trT)
	rT2.Add(&rT, &trT)
	return P1P1{X: rX2, Y: rY2, Z: rZ, T: rT2}
}

// Select sets *d to a if flag == 0 and to b if flag == 1, without
// branching on flag, so that table lookups during fixed-base scalar
// multiplication do not leak the selected index through timing.
func (d *Precomp) Select(a, b *Precomp, flag uint64) *Precomp {
	d.YPlusX.Select(&a.YPlusX, &b.YPlusX, flag)
	d.YMinusX.Select(&a.YMinusX, &b.YMinusX, flag)
	d.XY2D.Select(&a.XY2D, &b.XY2D, flag)
	return d
}

// CondNegate negates the affine point represented by d in place (by
// swapping YPlusX/YMinusX and negating XY2D) when flag == 1, and
// leaves it unchanged when flag == 0.
func (d *Precomp) CondNegate(flag uint64) {
	var t field.Element
	t.Select(&d.YPlusX, &d.YMinusX, flag)
	var u field.Element
	u.Select(&d.YMinusX, &d.YPlusX, flag)
	d.YPlusX, d.YMinusX = t, u
	var negXY2D field.Element
	negXY2D.Neg(&d.XY2D)
	d.XY2D.Select(&d.XY2D, &negXY2D, flag)
}

// Add returns p + q as a P3 point.
func Add(p, q *P3) P3 {
	cached := p3ToCached(q)
	result := add(p, &cached)
	return p1p1ToP3(&result)
}

// Negate returns -p as a P3 point.
func Negate(p *P3) P3 {
	var negX, negT field.Element
	negX.Neg(&p.X)
	negT.Neg(&p.T)
	return P3{X: negX, Y: p.Y, Z: p.Z, T: negT}
}

// Equal reports whether p and q represent the same curve point,
// comparing in affine coordinates.
func (p *P3) Equal(q *P3) uint64 {
	var xp, xq, yp, yq, invZp, invZq field.Element
	invZp.Invert(&p.Z)
	invZq.Invert(&q.Z)
	xp.Mul(&p.X, &invZp)
	xq.Mul(&q.X, &invZq)
	yp.Mul(&p.Y, &invZp)
	yq.Mul(&q.Y, &invZq)
	return xp.Equal(&xq) & yp.Equal(&yq)
}

// Bytes returns the 32-byte compressed encoding of p (spec.md §4.F
// "Wire format"): the little-endian encoding of y with the sign bit
// of x stored in the high bit of byte 31.
func (p *P3) Bytes() [32]byte {
	var invZ, x, y field.Element
	invZ.Invert(&p.Z)
	x.Mul(&p.X, &invZ)
	y.Mul(&p.Y, &invZ)
	out := y.Bytes()
	out[31] |= byte(x.IsNegative() << 7)
	return out
}

// sqrtRatio computes a candidate square root of u/v following the
// addition chain used throughout ed25519 decompression: x =
// (u*v^7)^((p-5)/8) * u * v^3. It does not itself verify that x^2*v
// equals u or -u; callers must check that and apply the sqrt(-1)
// correction as needed.
func sqrtRatio(u, v *field.Element) field.Element {
	var v3, v7, uv7, x field.Element
	v3.Square(v)
	v3.Mul(&v3, v)
	v7.Square(&v3)
	v7.Mul(&v7, v)
	uv7.Mul(u, &v7)
	x.Pow22523(&uv7)
	x.Mul(&x, u)
	x.Mul(&x, &v3)
	return x
}

// FromBytesNegateVartime decodes a compressed point following spec.md
// §4.D, then negates the result. The negation reflects this routine's
// use during SPAKE2 message processing, where the peer's encoded
// point Q needs to be combined as -(Q) when subtracting the mask
// point; see spec.md §4.F. It reports false if s does not decode to a
// point on the curve. Because decoding failure is driven entirely by
// untrusted peer input and not by secret data, this routine is
// variable-time.
func FromBytesNegateVartime(s []byte) (*P3, bool) {
	var y field.Element
	y.SetBytes(s)

	var y2, u, v, dy2 field.Element
	y2.Square(&y)
	u.Sub(&y2, &field.One)
	dy2.Mul(&d, &y2)
	v.Add(&dy2, &field.One)

	x := sqrtRatio(&u, &v)

	var vx2, check field.Element
	vx2.Square(&x)
	vx2.Mul(&vx2, &v)
	check.Sub(&vx2, &u)
	if check.IsNonZero() != 0 {
		// v*x^2 != u; the other candidate root is x*sqrt(-1), which
		// works if v*x^2 == -u for the *same* vx2 computed above.
		check.Add(&vx2, &u)
		if check.IsNonZero() != 0 {
			return nil, false
		}
		x.Mul(&x, &sqrtm1)
	}

	wantSign := uint64(s[31] >> 7)
	if x.IsNegative() != wantSign {
		x.Neg(&x)
	}

	// Final negation: the routine's documented contract returns -P,
	// not P.
	x.Neg(&x)
	var t field.Element
	t.Mul(&x, &y)
	return &P3{X: x, Y: y, Z: field.One, T: t}, true
}
