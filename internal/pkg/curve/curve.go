// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

package curve

import "github.com/MuntashirAkon/spake2-go/internal/pkg/field"

// d, d2, sqrtm1 and B are the edwards25519 domain constants. Rather
// than transcribe their limb encodings by hand, they are derived
// algebraically at package initialization time from their defining
// equations; this avoids a transcription error in a 32-byte constant
// that no test run would ever catch (per spec.md §9, the Go field
// representation is itself an implementation artifact, so matching
// the reference implementation's literal limbs is not the invariant
// that matters — matching the values they encode is).
var (
	d      field.Element
	d2     field.Element
	sqrtm1 field.Element
	B      P3

	// BaseTable is the precomputed fixed-base table for B, built once
	// here instead of once per SPAKE2 exchange.
	BaseTable *FixedBaseTable
)

// sqrtm1Exponent is (p-1)/4 = 2^253 - 5, little-endian limbs.
var sqrtm1Exponent = [4]uint64{
	0xFFFFFFFFFFFFFFFB,
	0xFFFFFFFFFFFFFFFF,
	0xFFFFFFFFFFFFFFFF,
	0x1FFFFFFFFFFFFFFF,
}

func init() {
	// d = -121665/121666.
	var c121665, c121666, inv121666, negC121665 field.Element
	setSmall(&c121665, 121665)
	setSmall(&c121666, 121666)
	inv121666.Invert(&c121666)
	negC121665.Neg(&c121665)
	d.Mul(&negC121665, &inv121666)
	d2.Add(&d, &d)

	sqrtm1 = powVartime(&field.Two, &sqrtm1Exponent)

	B = deriveBasePoint()
	BaseTable = BuildFixedBaseTable(&B)
}

func setSmall(e *field.Element, v uint64) {
	var buf [32]byte
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	e.SetBytes(buf[:])
}

// powVartime computes a^exp by square-and-multiply, most significant
// bit first. It is used only at package initialization time to derive
// public domain constants from their defining exponents, so its
// variable-time behavior leaks nothing secret.
func powVartime(a *field.Element, exp *[4]uint64) field.Element {
	result := field.One
	started := false
	for limb := 3; limb >= 0; limb-- {
		for bit := 63; bit >= 0; bit-- {
			if started {
				result.Square(&result)
			}
			if (exp[limb]>>uint(bit))&1 == 1 {
				if !started {
					started = true
					result.Set(a)
					continue
				}
				result.Mul(&result, a)
			}
		}
	}
	if !started {
		return field.One
	}
	return result
}

// deriveBasePoint computes the edwards25519 base point B = (x, 4/5)
// with x forced to the even (non-negative) square root, following the
// same decompression relation used for peer messages (spec.md §4.D).
func deriveBasePoint() P3 {
	var four, five, y field.Element
	setSmall(&four, 4)
	setSmall(&five, 5)
	var invFive field.Element
	invFive.Invert(&five)
	y.Mul(&four, &invFive)

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
		x.Mul(&x, &sqrtm1)
	}

	if x.IsNegative() != 0 {
		x.Neg(&x)
	}

	var t field.Element
	t.Mul(&x, &y)
	return P3{X: x, Y: y, Z: field.One, T: t}
}
