// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

// Package field implements arithmetic in the prime field of integers
// modulo p = 2^255 - 19, the base field of edwards25519.
//
// Elements are stored as four 64-bit limbs in little-endian order
// (limb 0 is least significant). Unlike the classic ref10 ten-limb
// 2^25.5 radix spec.md describes, this implementation keeps values in
// plain base-2^64 form and leans on math/bits' carry-propagating 64x64
// multiply/add primitives; see DESIGN.md for why this substitution is
// safe (spec.md §9 calls the limb layout an implementation artifact,
// not part of the contract). Functions accept inputs anywhere in
// 0..2^256-1 and only reduce to canonical range on demand (Normalize,
// Bytes, IsNegative, Equal).
package field

import (
	"encoding/binary"
	"math/bits"
)

// mq is the field's modulus parameter: p = 2^255 - mq.
const mq uint64 = 19

// Element is a field element modulo p = 2^255 - 19.
type Element [4]uint64

// Zero, One and related small constants, used as starting points for
// curve arithmetic and as identities.
var (
	Zero = Element{0, 0, 0, 0}
	One  = Element{1, 0, 0, 0}
	Two  = Element{2, 0, 0, 0}
)

// Set copies a into d and returns d.
func (d *Element) Set(a *Element) *Element {
	*d = *a
	return d
}

// Add sets d = a + b and returns d.
func (d *Element) Add(a, b *Element) *Element {
	gfAdd((*[4]uint64)(d), (*[4]uint64)(a), (*[4]uint64)(b))
	return d
}

// Sub sets d = a - b and returns d.
func (d *Element) Sub(a, b *Element) *Element {
	gfSub((*[4]uint64)(d), (*[4]uint64)(a), (*[4]uint64)(b))
	return d
}

// Neg sets d = -a and returns d.
func (d *Element) Neg(a *Element) *Element {
	gfNeg((*[4]uint64)(d), (*[4]uint64)(a))
	return d
}

// Mul sets d = a*b and returns d.
func (d *Element) Mul(a, b *Element) *Element {
	gfMul((*[4]uint64)(d), (*[4]uint64)(a), (*[4]uint64)(b))
	return d
}

// Square sets d = a*a and returns d.
func (d *Element) Square(a *Element) *Element {
	gfSqr((*[4]uint64)(d), (*[4]uint64)(a))
	return d
}

// SquareAndDouble sets d = 2*a*a and returns d.
func (d *Element) SquareAndDouble(a *Element) *Element {
	var t [4]uint64
	gfSqr(&t, (*[4]uint64)(a))
	gfAdd((*[4]uint64)(d), &t, &t)
	return d
}

// Select sets d = a if flag == 0, or d = b if flag == 1, without
// branching on flag. flag must be 0 or 1.
func (d *Element) Select(a, b *Element, flag uint64) *Element {
	ma := -flag // all-ones if flag==1, else 0
	mb := ^ma
	for i := 0; i < 4; i++ {
		d[i] = (b[i] & ma) | (a[i] & mb)
	}
	return d
}

// CondNeg sets d = -a if flag == 1, or d = a if flag == 0. flag must be
// 0 or 1.
func (d *Element) CondNeg(a *Element, flag uint64) *Element {
	var t Element
	t.Neg(a)
	d.Select(a, &t, flag)
	return d
}

// Invert sets d = 1/a using Fermat's little theorem (a^(p-2)) via the
// standard ref10 addition chain (254 squarings, 11 multiplications). If
// a is zero, d is set to zero.
func (d *Element) Invert(a *Element) *Element {
	var z2, z9, z11, t0, t1 Element

	z2.Square(a)           // a^2
	t0.Square(&z2)          // a^4
	t0.Square(&t0)           // a^8
	z9.Mul(&t0, a)          // a^9
	z11.Mul(&z9, &z2)        // a^11
	t0.Square(&z11)          // a^22
	z2_5_0 := new(Element).Mul(&t0, &z9) // a^(2^5-1)

	t0 = *z2_5_0
	for i := 0; i < 5; i++ {
		t0.Square(&t0)
	}
	z2_10_0 := new(Element).Mul(&t0, z2_5_0) // a^(2^10-1)

	t0 = *z2_10_0
	for i := 0; i < 10; i++ {
		t0.Square(&t0)
	}
	z2_20_0 := new(Element).Mul(&t0, z2_10_0) // a^(2^20-1)

	t0 = *z2_20_0
	for i := 0; i < 20; i++ {
		t0.Square(&t0)
	}
	t1.Mul(&t0, z2_20_0) // a^(2^40-1)

	t0 = t1
	for i := 0; i < 10; i++ {
		t0.Square(&t0)
	}
	z2_50_0 := new(Element).Mul(&t0, z2_10_0) // a^(2^50-1)

	t0 = *z2_50_0
	for i := 0; i < 50; i++ {
		t0.Square(&t0)
	}
	z2_100_0 := new(Element).Mul(&t0, z2_50_0) // a^(2^100-1)

	t0 = *z2_100_0
	for i := 0; i < 100; i++ {
		t0.Square(&t0)
	}
	t1.Mul(&t0, z2_100_0) // a^(2^200-1)

	t0 = t1
	for i := 0; i < 50; i++ {
		t0.Square(&t0)
	}
	t0.Mul(&t0, z2_50_0) // a^(2^250-1)

	for i := 0; i < 5; i++ {
		t0.Square(&t0)
	}
	d.Mul(&t0, &z11) // a^(2^255-21) = a^(p-2)
	return d
}

// Pow22523 sets d = a^((p-5)/8), using the same addition chain prefix as
// Invert. It is used to extract square roots during point decompression.
func (d *Element) Pow22523(a *Element) *Element {
	var z2, z9, z11, t0, t1 Element

	z2.Square(a)
	t0.Square(&z2)
	t0.Square(&t0)
	z9.Mul(&t0, a)
	z11.Mul(&z9, &z2)
	t0.Square(&z11)
	z2_5_0 := new(Element).Mul(&t0, &z9)

	t0 = *z2_5_0
	for i := 0; i < 5; i++ {
		t0.Square(&t0)
	}
	z2_10_0 := new(Element).Mul(&t0, z2_5_0)

	t0 = *z2_10_0
	for i := 0; i < 10; i++ {
		t0.Square(&t0)
	}
	z2_20_0 := new(Element).Mul(&t0, z2_10_0)

	t0 = *z2_20_0
	for i := 0; i < 20; i++ {
		t0.Square(&t0)
	}
	t1.Mul(&t0, z2_20_0)

	t0 = t1
	for i := 0; i < 10; i++ {
		t0.Square(&t0)
	}
	z2_50_0 := new(Element).Mul(&t0, z2_10_0)

	t0 = *z2_50_0
	for i := 0; i < 50; i++ {
		t0.Square(&t0)
	}
	z2_100_0 := new(Element).Mul(&t0, z2_50_0)

	t0 = *z2_100_0
	for i := 0; i < 100; i++ {
		t0.Square(&t0)
	}
	t1.Mul(&t0, z2_100_0)

	t0 = t1
	for i := 0; i < 50; i++ {
		t0.Square(&t0)
	}
	t0.Mul(&t0, z2_50_0) // a^(2^250-1)

	t0.Square(&t0)
	t0.Square(&t0) // a^(2^252-4)
	d.Mul(&t0, a)  // a^(2^252-3) = a^((p-5)/8)
	return d
}

// Normalize reduces a into the canonical range [0, p) and returns it in
// d.
func (d *Element) Normalize(a *Element) *Element {
	gfNorm((*[4]uint64)(d), (*[4]uint64)(a))
	return d
}

// IsNonZero returns 1 if d is nonzero modulo p, 0 otherwise.
func (d *Element) IsNonZero() uint64 {
	return 1 - gfIsZero((*[4]uint64)(d))
}

// Equal returns 1 if d == a modulo p, 0 otherwise.
func (d *Element) Equal(a *Element) uint64 {
	return gfEq((*[4]uint64)(d), (*[4]uint64)(a))
}

// IsNegative returns the least significant bit of the canonical
// little-endian encoding of d, matching spec.md §4.B's definition.
func (d *Element) IsNegative() uint64 {
	var t Element
	t.Normalize(d)
	return t[0] & 1
}

// Bytes returns the 32-byte canonical little-endian encoding of d.
func (d *Element) Bytes() [32]byte {
	var t Element
	t.Normalize(d)
	var out [32]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(out[8*i:], t[i])
	}
	return out
}

// SetBytes decodes 32 little-endian bytes into d, clearing the top bit
// of byte 31 (reserved for the point-sign bit in compressed point
// encodings) before storing. This does not require the input to be a
// canonical encoding of a field element below p; it accepts the raw
// 255-bit value, matching spec.md §4.B's fromBytes.
func (d *Element) SetBytes(s []byte) *Element {
	var buf [32]byte
	copy(buf[:], s[:32])
	buf[31] &= 0x7F
	for i := 0; i < 4; i++ {
		d[i] = binary.LittleEndian.Uint64(buf[8*i:])
	}
	return d
}

// ---------------------------------------------------------------------
// Internal limb-level routines. These mirror the structure of a 4x64
// generic-modulus field implementation (gf_add/gf_sub/... over
// p = 2^255 - mq for small mq), specialised here to mq = 19.
// ---------------------------------------------------------------------

func gfAdd(d, a, b *[4]uint64) {
	var cc uint64
	for i := 0; i < 4; i++ {
		d[i], cc = bits.Add64(a[i], b[i], cc)
	}
	d[0], cc = bits.Add64(d[0], (mq<<1)&-cc, 0)
	for i := 1; i < 4; i++ {
		d[i], cc = bits.Add64(d[i], 0, cc)
	}
	d[0] += (mq << 1) & -cc
}

func gfSub(d, a, b *[4]uint64) {
	var cc uint64
	for i := 0; i < 4; i++ {
		d[i], cc = bits.Sub64(a[i], b[i], cc)
	}
	d[0], cc = bits.Sub64(d[0], (mq<<1)&-cc, 0)
	for i := 1; i < 4; i++ {
		d[i], cc = bits.Sub64(d[i], 0, cc)
	}
	d[0] -= (mq << 1) & -cc
}

func gfNeg(d, a *[4]uint64) {
	var cc uint64
	d[0], cc = bits.Sub64(^(mq<<1)+1, a[0], 0)
	for i := 1; i < 4; i++ {
		d[i], cc = bits.Sub64(0xFFFFFFFFFFFFFFFF, a[i], cc)
	}
	var e uint64 = -cc
	d[0], cc = bits.Add64(d[0], e&(^mq+1), 0)
	for i := 1; i < 3; i++ {
		d[i], cc = bits.Add64(d[i], e, cc)
	}
	d[3], _ = bits.Add64(d[3], e>>1, cc)
}

func gfMul(d, a, b *[4]uint64) {
	var t [8]uint64
	var hi, lo, cc uint64

	t[1], t[0] = bits.Mul64(a[0], b[0])
	t[3], t[2] = bits.Mul64(a[1], b[1])
	t[5], t[4] = bits.Mul64(a[2], b[2])
	t[7], t[6] = bits.Mul64(a[3], b[3])

	hi, lo = bits.Mul64(a[0], b[1])
	t[1], cc = bits.Add64(t[1], lo, 0)
	t[2], cc = bits.Add64(t[2], hi, cc)
	hi, lo = bits.Mul64(a[0], b[3])
	t[3], cc = bits.Add64(t[3], lo, cc)
	t[4], cc = bits.Add64(t[4], hi, cc)
	hi, lo = bits.Mul64(a[2], b[3])
	t[5], cc = bits.Add64(t[5], lo, cc)
	t[6], cc = bits.Add64(t[6], hi, cc)
	t[7] += cc

	hi, lo = bits.Mul64(a[1], b[0])
	t[1], cc = bits.Add64(t[1], lo, 0)
	t[2], cc = bits.Add64(t[2], hi, cc)
	hi, lo = bits.Mul64(a[3], b[0])
	t[3], cc = bits.Add64(t[3], lo, cc)
	t[4], cc = bits.Add64(t[4], hi, cc)
	hi, lo = bits.Mul64(a[3], b[2])
	t[5], cc = bits.Add64(t[5], lo, cc)
	t[6], cc = bits.Add64(t[6], hi, cc)
	t[7] += cc

	hi, lo = bits.Mul64(a[0], b[2])
	t[2], cc = bits.Add64(t[2], lo, 0)
	t[3], cc = bits.Add64(t[3], hi, cc)
	hi, lo = bits.Mul64(a[1], b[3])
	t[4], cc = bits.Add64(t[4], lo, cc)
	t[5], cc = bits.Add64(t[5], hi, cc)
	t[6], cc = bits.Add64(t[6], 0, cc)
	t[7] += cc

	hi, lo = bits.Mul64(a[2], b[0])
	t[2], cc = bits.Add64(t[2], lo, 0)
	t[3], cc = bits.Add64(t[3], hi, cc)
	hi, lo = bits.Mul64(a[3], b[1])
	t[4], cc = bits.Add64(t[4], lo, cc)
	t[5], cc = bits.Add64(t[5], hi, cc)
	t[6], cc = bits.Add64(t[6], 0, cc)
	t[7] += cc

	var x0, x1, x2 uint64
	x1, x0 = bits.Mul64(a[1], b[2])
	hi, lo = bits.Mul64(a[2], b[1])
	x0, cc = bits.Add64(x0, lo, 0)
	x1, x2 = bits.Add64(x1, hi, cc)
	t[3], cc = bits.Add64(t[3], x0, 0)
	t[4], cc = bits.Add64(t[4], x1, cc)
	t[5], cc = bits.Add64(t[5], x2, cc)
	t[6], cc = bits.Add64(t[6], 0, cc)
	t[7] += cc

	foldHigh(d, &t)
}

func gfSqr(d, a *[4]uint64) {
	var t [8]uint64
	var hi, lo, cc uint64

	t[2], t[1] = bits.Mul64(a[0], a[1])
	t[4], t[3] = bits.Mul64(a[0], a[3])
	t[6], t[5] = bits.Mul64(a[2], a[3])
	hi, lo = bits.Mul64(a[0], a[2])
	t[2], cc = bits.Add64(t[2], lo, 0)
	t[3], cc = bits.Add64(t[3], hi, cc)
	hi, lo = bits.Mul64(a[1], a[3])
	t[4], cc = bits.Add64(t[4], lo, cc)
	t[5], cc = bits.Add64(t[5], hi, cc)
	t[6] += cc
	hi, lo = bits.Mul64(a[1], a[2])
	t[3], cc = bits.Add64(t[3], lo, 0)
	t[4], cc = bits.Add64(t[4], hi, cc)
	t[5], cc = bits.Add64(t[5], 0, cc)
	t[6] += cc

	t[7] = t[6] >> 63
	t[6] = (t[6] << 1) | (t[5] >> 63)
	t[5] = (t[5] << 1) | (t[4] >> 63)
	t[4] = (t[4] << 1) | (t[3] >> 63)
	t[3] = (t[3] << 1) | (t[2] >> 63)
	t[2] = (t[2] << 1) | (t[1] >> 63)
	t[1] = t[1] << 1

	hi, t[0] = bits.Mul64(a[0], a[0])
	t[1], cc = bits.Add64(t[1], hi, 0)
	hi, lo = bits.Mul64(a[1], a[1])
	t[2], cc = bits.Add64(t[2], lo, cc)
	t[3], cc = bits.Add64(t[3], hi, cc)
	hi, lo = bits.Mul64(a[2], a[2])
	t[4], cc = bits.Add64(t[4], lo, cc)
	t[5], cc = bits.Add64(t[5], hi, cc)
	hi, lo = bits.Mul64(a[3], a[3])
	t[6], cc = bits.Add64(t[6], lo, cc)
	t[7], _ = bits.Add64(t[7], hi, cc)

	foldHigh(d, &t)
}

// foldHigh reduces the 512-bit value t modulo p = 2^255 - mq into the
// 256-bit destination d, by folding the upper 256 bits in, scaled by
// 2*mq, exploiting 2^256 = 2*mq (mod p).
func foldHigh(d *[4]uint64, t *[8]uint64) {
	var h0, h1, h2, h3, lo, cc uint64
	h0, lo = bits.Mul64(t[4], mq<<1)
	t[0], cc = bits.Add64(t[0], lo, 0)
	h1, lo = bits.Mul64(t[5], mq<<1)
	t[1], cc = bits.Add64(t[1], lo, cc)
	h2, lo = bits.Mul64(t[6], mq<<1)
	t[2], cc = bits.Add64(t[2], lo, cc)
	h3, lo = bits.Mul64(t[7], mq<<1)
	t[3], cc = bits.Add64(t[3], lo, cc)
	h3 += cc

	h3 = (h3 << 1) | (t[3] >> 63)
	t[3] &= 0x7FFFFFFFFFFFFFFF
	d[0], cc = bits.Add64(t[0], h3*mq, 0)
	d[1], cc = bits.Add64(t[1], h0, cc)
	d[2], cc = bits.Add64(t[2], h1, cc)
	d[3], cc = bits.Add64(t[3], h2, cc)
}

func gfNorm(d, a *[4]uint64) {
	var cc uint64
	d[0], cc = bits.Add64(a[0], mq&-(a[3]>>63), 0)
	for i := 1; i < 3; i++ {
		d[i], cc = bits.Add64(a[i], 0, cc)
	}
	d[3] = (a[3] & 0x7FFFFFFFFFFFFFFF) + cc

	d[0], cc = bits.Sub64(d[0], ^mq+1, 0)
	for i := 1; i < 3; i++ {
		d[i], cc = bits.Sub64(d[i], 0xFFFFFFFFFFFFFFFF, cc)
	}
	d[3], cc = bits.Sub64(d[3], 0x7FFFFFFFFFFFFFFF, cc)

	var e uint64 = -cc
	d[0], cc = bits.Add64(d[0], e&(^mq+1), 0)
	for i := 1; i < 3; i++ {
		d[i], cc = bits.Add64(d[i], e, cc)
	}
	d[3], _ = bits.Add64(d[3], e>>1, cc)
}

func gfIsZero(a *[4]uint64) uint64 {
	t0 := a[0]
	t1 := a[0] + mq
	t2 := a[0] + (mq << 1)
	for i := 1; i < 3; i++ {
		t0 |= a[i]
		t1 |= ^a[i]
		t2 |= ^a[i]
	}
	t0 |= a[3]
	t1 |= a[3] ^ 0x7FFFFFFFFFFFFFFF
	t2 |= ^a[3]
	return 1 - (((t0 | -t0) & (t1 | -t1) & (t2 | -t2)) >> 63)
}

func gfEq(a, b *[4]uint64) uint64 {
	var t [4]uint64
	gfSub(&t, a, b)
	return gfIsZero(&t)
}
