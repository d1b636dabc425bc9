// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

package curve

import (
	"crypto/sha256"

	"github.com/MuntashirAkon/spake2-go/internal/pkg/field"
)

// mSeed and nSeed are the BoringSSL-compatible generation seeds for
// the SPAKE2 mask base points (spec.md §4.F).
const (
	mSeed = "edwards25519 point generation seed (M)"
	nSeed = "edwards25519 point generation seed (N)"
)

// M and N are the small-table precomputations of the Alice and Bob
// mask base points, derived once at package initialization by
// decompressing SHA-256(seed). The seeds were chosen so this
// decoding always succeeds.
var (
	M *SmallTable
	N *SmallTable
)

func init() {
	M = deriveMaskTable(mSeed)
	N = deriveMaskTable(nSeed)
}

func deriveMaskTable(seed string) *SmallTable {
	v := sha256.Sum256([]byte(seed))
	p, ok := FromBytesNegateVartime(v[:])
	if !ok {
		panic("curve: mask point seed does not decode to a curve point")
	}
	// FromBytesNegateVartime returns -P; negate back to the point the
	// seed actually encodes before building the small table from it.
	var negX, negT field.Element
	negX.Neg(&p.X)
	negT.Neg(&p.T)
	original := P3{X: negX, Y: p.Y, Z: p.Z, T: negT}
	return BuildSmallTable(&original)
}
