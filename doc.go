// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

/*
Package spake2 implements SPAKE2, a password-authenticated key exchange
protocol, over the Edwards-form elliptic curve edwards25519. The wire
format and the protocol computations (mask points, password-scalar
handling, transcript hash) follow the BoringSSL reference
implementation, so this package interoperates with any SPAKE2 peer that
speaks the same wire format. The internal field and table layouts are
its own (four 64-bit limbs per field element, a 64-row fixed-base
table) and do not mirror BoringSSL's.

Two parties, Alice and Bob, each hold a shared low-entropy password and a
pair of identity strings. Each side calls GenerateMessage once to produce
a 32-byte outgoing message, exchanges messages with the peer out of band,
and calls ProcessMessage on the message it received to derive a 64-byte
session key. If the passwords and identities agree on both sides the
keys are identical; any mismatch (password, identity, a corrupted
message, an off-curve point) yields independent keys or an outright
rejection.

A successful key derivation is not proof that the peer knows the
password — callers that need that guarantee must run an explicit key
confirmation exchange on top of the derived key; this package does not
implement one.

IMPORTANT NOTE: this code has not been reviewed by cryptography or
security experts. Do not use it for anything important.
*/
package spake2
