// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

// Package scalar implements the SPAKE2-layer scalar operations of
// spec.md §4.C: reduction of a 64-byte digest into a canonical 32-byte
// scalar modulo the edwards25519 group order ell, and the small set of
// unreduced 32-byte operations (add, double, conditional move) used
// only by the password-scalar compatibility hack.
package scalar

import (
	"encoding/binary"
	"math/bits"
)

// EllBytes is the little-endian encoding of the edwards25519 group
// order, ell = 2^252 + 27742317777372353535851937790883648493.
var EllBytes = [32]byte{
	0xed, 0xd3, 0xf5, 0x5c, 0x1a, 0x63, 0x12, 0x58,
	0xd6, 0x9c, 0xf7, 0xa2, 0xde, 0xf9, 0xde, 0x14,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10,
}

var ell [4]uint64

func init() {
	for i := 0; i < 4; i++ {
		ell[i] = binary.LittleEndian.Uint64(EllBytes[8*i:])
	}
}

// Reduce reduces a 64-byte big little-endian value modulo ell and
// returns the canonical 32-byte little-endian result. It processes the
// input most-significant-bit first with a fixed 512-step
// double-and-conditionally-subtract loop, so its running time does not
// depend on the input value.
func Reduce(x *[64]byte) [32]byte {
	var acc [4]uint64
	for bitPos := 511; bitPos >= 0; bitPos-- {
		bit := uint64(x[bitPos/8]>>(uint(bitPos)%8)) & 1
		shiftInBit(&acc, bit)
		condSubtractEll(&acc)
	}
	var out [32]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(out[8*i:], acc[i])
	}
	return out
}

func shiftInBit(acc *[4]uint64, bit uint64) {
	carry := bit
	for i := 0; i < 4; i++ {
		next := acc[i] >> 63
		acc[i] = (acc[i] << 1) | carry
		carry = next
	}
}

func condSubtractEll(acc *[4]uint64) {
	var t [4]uint64
	var borrow uint64
	t[0], borrow = bits.Sub64(acc[0], ell[0], 0)
	t[1], borrow = bits.Sub64(acc[1], ell[1], borrow)
	t[2], borrow = bits.Sub64(acc[2], ell[2], borrow)
	t[3], borrow = bits.Sub64(acc[3], ell[3], borrow)
	mask := borrow - 1 // borrow==0 (acc>=ell): mask=all-ones, select t. borrow==1: mask=0, keep acc.
	for i := 0; i < 4; i++ {
		acc[i] = (t[i] & mask) | (acc[i] &^ mask)
	}
}

// Scalar is the SPAKE-layer 32-byte little-endian scalar used only by
// the password-scalar compatibility hack (spec.md §3, §4.C). Its Add
// and Double are plain unreduced 256-bit byte-wise operations; overflow
// past bit 256 is silently discarded, matching spec.md's description.
type Scalar [32]byte

// Add sets d = a + b (mod 2^256) and returns d.
func (d *Scalar) Add(a, b *Scalar) *Scalar {
	var carry uint16
	for i := 0; i < 32; i++ {
		sum := uint16(a[i]) + uint16(b[i]) + carry
		d[i] = byte(sum)
		carry = sum >> 8
	}
	return d
}

// Double sets d = 2*a (mod 2^256) and returns d.
func (d *Scalar) Double(a *Scalar) *Scalar {
	var carry byte
	for i := 0; i < 32; i++ {
		next := a[i] >> 7
		d[i] = (a[i] << 1) | carry
		carry = next
	}
	return d
}

// CMove sets d[i] = (m & a[i]) | (^m & b[i]) for each byte i, where m is
// the byte at position (i mod 4) of the little-endian encoding of mask,
// i.e. the 4-byte pattern derived from mask's low 32 bits is repeated
// across all 8 groups of 4 bytes. With mask == 0xFFFFFFFF, d == a; with
// mask == 0, d == b.
func (d *Scalar) CMove(a, b *Scalar, mask uint32) *Scalar {
	var m [4]byte
	binary.LittleEndian.PutUint32(m[:], mask)
	for i := 0; i < 32; i++ {
		mi := m[i%4]
		d[i] = (mi & a[i]) | (^mi & b[i])
	}
	return d
}

// Bytes returns the 32-byte little-endian encoding of s.
func (s *Scalar) Bytes() [32]byte {
	return [32]byte(*s)
}

// FromBytes32 builds a Scalar from a 32-byte little-endian slice.
func FromBytes32(b []byte) Scalar {
	var s Scalar
	copy(s[:], b[:32])
	return s
}

// LeftShift3 multiplies the 32-byte little-endian scalar s by 8 in
// place by shifting left 3 bits, carrying between bytes, per spec.md
// §4.F step 2 (cofactor clearing). Bits shifted past byte 31 are
// discarded.
func LeftShift3(s *[32]byte) {
	var carry byte
	for i := 0; i < 32; i++ {
		nextCarry := s[i] >> 5
		s[i] = (s[i] << 3) | carry
		carry = nextCarry
	}
}
