// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

package curve

import "github.com/MuntashirAkon/spake2-go/internal/pkg/field"

// FixedBaseTable is a precomputed table of 64 rows of 8 Duif entries:
// row i, column j holds (j+1)*16^i * P for the table's base point P.
// Unlike the reference ladder's row-reuse optimization, which folds
// two digit positions through a single row plus a compensating
// doubling, this table stores the absolute scale for every one of the
// 64 nibble positions directly, so a multiply needs no doublings of
// its own — only 64 constant-time selects and mixed additions. This
// trades table size for an implementation that is straightforward to
// verify by inspection (see DESIGN.md).
type FixedBaseTable [64][8]Precomp

// identityPrecomp is the Duif encoding of the identity point: y+x=1,
// y-x=1, 2*d*x*y=0.
var identityPrecomp = Precomp{YPlusX: field.One, YMinusX: field.One, XY2D: field.Zero}

func toPrecomp(p *P3) Precomp {
	var invZ, x, y field.Element
	invZ.Invert(&p.Z)
	x.Mul(&p.X, &invZ)
	y.Mul(&p.Y, &invZ)
	var pc Precomp
	pc.YPlusX.Add(&y, &x)
	pc.YMinusX.Sub(&y, &x)
	var xy field.Element
	xy.Mul(&x, &y)
	pc.XY2D.Mul(&xy, &d2)
	return pc
}

// BuildFixedBaseTable computes the 64x8 table for base point p. This
// does 7 additions per row and 4 doublings between rows over a public
// point, so it runs in variable time; it is called once per curve-lifetime base
// point (B, computed at init) and once per SPAKE2 exchange for the
// peer's decoded point (Q_ext).
func BuildFixedBaseTable(p *P3) *FixedBaseTable {
	var t FixedBaseTable

	row := *p
	for i := 0; i < 64; i++ {
		acc := row
		for j := 0; j < 8; j++ {
			t[i][j] = toPrecomp(&acc)
			if j < 7 {
				cached := p3ToCached(&row)
				p1p1 := add(&acc, &cached)
				acc = p1p1ToP3(&p1p1)
			}
		}
		if i < 63 {
			dbl := p3Dbl(&row)
			row = p1p1ToP3(&dbl)
			dbl = p3Dbl(&row)
			row = p1p1ToP3(&dbl)
			dbl = p3Dbl(&row)
			row = p1p1ToP3(&dbl)
			dbl = p3Dbl(&row)
			row = p1p1ToP3(&dbl)
		}
	}
	return &t
}

// decomposeScalar splits the 32-byte little-endian scalar s into 64
// signed nibbles in [-8, 8], per spec.md §4.D.
func decomposeScalar(s *[32]byte) [64]int8 {
	var e [64]int8
	for i := 0; i < 32; i++ {
		e[2*i] = int8(s[i] & 15)
		e[2*i+1] = int8((s[i] >> 4) & 15)
	}
	var carry int8
	for i := 0; i < 63; i++ {
		e[i] += carry
		carry = (e[i] + 8) >> 4
		e[i] -= carry << 4
	}
	e[63] += carry
	return e
}

// isNegative reports whether digit is negative, computed by
// sign-extending to 64 bits and reading the top bit, with no branch on
// digit's value.
func isNegative(digit int8) uint64 {
	return uint64(int64(digit)) >> 63
}

// byteEqual reports whether a == b, computed arithmetically with no
// branch on either value: a^b is zero only when a==b, and the
// decrement-then-top-bit trick turns that into a 0/1 flag.
func byteEqual(a, b uint8) uint64 {
	x := uint32(a ^ b)
	x--
	return uint64(x >> 31)
}

// selectRow performs a constant-time select across the 8 Duif entries
// of row, returning the entry for |digit| (or the identity when
// digit == 0), conditionally negated when digit < 0. Every step is an
// arithmetic mask, not a branch on the secret digit.
func selectRow(row *[8]Precomp, digit int8) Precomp {
	sign := isNegative(digit)
	signMask := uint8(0) - uint8(sign)
	abs := uint8(digit)
	negAbs := uint8(-digit)
	absDigit := abs ^ ((abs ^ negAbs) & signMask)

	result := identityPrecomp
	for j := 0; j < 8; j++ {
		flag := byteEqual(absDigit, uint8(j+1))
		result.Select(&result, &row[j], flag)
	}
	result.CondNegate(sign)
	return result
}

// ScalarMult computes s*P given a precomputed fixed-base table for P,
// following spec.md §4.D's signed-radix-16 decomposition. It is
// constant-time with respect to s: every one of the 64 rows is
// touched with a full 8-way select regardless of the digit value.
func ScalarMult(table *FixedBaseTable, s *[32]byte) P3 {
	digits := decomposeScalar(s)
	acc := Identity()
	for i := 0; i < 64; i++ {
		entry := selectRow(&table[i], digits[i])
		p1p1 := madd(&acc, &entry)
		acc = p1p1ToP3(&p1p1)
	}
	return acc
}

// VariableBaseMult computes s*Q for an arbitrary point Q (spec.md
// §4.D "variable-base scalar multiplication"): a fresh fixed-base
// table is constructed over Q and the same constant-time multiply is
// reused.
func VariableBaseMult(q *P3, s *[32]byte) P3 {
	table := BuildFixedBaseTable(q)
	return ScalarMult(table, s)
}

// SmallTable holds the 15-entry precomputation used for the mask
// points M and N (spec.md §4.D "small-table fixed-base
// multiplication"): entry i-1 (1<=i<=15) is
// ((i>>3)&1)*2^192*P + ((i>>2)&1)*2^128*P + ((i>>1)&1)*2^64*P + (i&1)*P.
type SmallTable [15]Precomp

// BuildSmallTable computes the 15-entry table for base point p.
func BuildSmallTable(p *P3) *SmallTable {
	var pows [4]P3
	pows[0] = *p
	for k := 1; k < 4; k++ {
		cur := pows[k-1]
		for b := 0; b < 64; b++ {
			dbl := p3Dbl(&cur)
			cur = p1p1ToP3(&dbl)
		}
		pows[k] = cur
	}

	var t SmallTable
	for i := 1; i <= 15; i++ {
		acc := Identity()
		first := true
		for bit := 0; bit < 4; bit++ {
			if (i>>bit)&1 == 0 {
				continue
			}
			if first {
				acc = pows[bit]
				first = false
				continue
			}
			cached := p3ToCached(&pows[bit])
			p1p1 := add(&acc, &cached)
			acc = p1p1ToP3(&p1p1)
		}
		t[i-1] = toPrecomp(&acc)
	}
	return &t
}

// SmallTableMult computes s*P given a SmallTable for P, following
// spec.md §4.D's 64-iteration small-table algorithm used for
// password_scalar*M and password_scalar*N.
func SmallTableMult(table *SmallTable, s *[32]byte) P3 {
	acc := Identity()
	for i := 63; i >= 0; i-- {
		byteOff := i / 8
		bitOff := uint(i % 8)
		idx := uint64(0)
		for k := 0; k < 4; k++ {
			bit := (s[byteOff+8*k] >> bitOff) & 1
			idx |= uint64(bit) << uint(k)
		}

		dbl := p3Dbl(&acc)
		acc = p1p1ToP3(&dbl)

		selected := identityPrecomp
		for j := 0; j < 15; j++ {
			flag := byteEqual(uint8(idx), uint8(j+1))
			selected.Select(&selected, &table[j], flag)
		}
		p1p1 := madd(&acc, &selected)
		acc = p1p1ToP3(&p1p1)
	}
	return acc
}
