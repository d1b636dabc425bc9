// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

package spake2

import (
	"crypto/rand"
	"crypto/sha512"
	"hash"
	"io"
)

var randr io.Reader = rand.Reader

// transcriptHasher is H from spec.md §4.F: it hashes the role-ordered
// transcript, the Diffie-Hellman value and the password hash into the
// 64-byte session key.
func transcriptHasher() hash.Hash {
	return sha512.New()
}

// passwordHasher hashes the password into the 64 bytes later reduced mod
// ell to produce the password scalar.
func passwordHasher() hash.Hash {
	return sha512.New()
}
