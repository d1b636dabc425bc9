// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

package spake2

import (
	"encoding/binary"
	"io"

	"github.com/MuntashirAkon/spake2-go/internal/pkg/curve"
	"github.com/MuntashirAkon/spake2-go/internal/pkg/scalar"
)

// Role identifies which side of the exchange a Context plays. The two
// roles use the mask base points M and N in opposite roles and hash
// the transcript in opposite identity/message order (spec.md §4.F).
type Role int

const (
	RoleAlice Role = iota
	RoleBob
)

// State is the Context's position in its state machine (spec.md §3,
// §4.F): Init -> MsgGenerated -> KeyGenerated, with Destroyed
// reachable from any state.
type State int

const (
	StateInit State = iota
	StateMsgGenerated
	StateKeyGenerated
	StateDestroyed
)

// Context holds the state of one side of a single SPAKE2 exchange. A
// Context is used once: GenerateMessage, then ProcessMessage, then
// (optionally) Destroy. It is not safe for concurrent use by multiple
// goroutines.
type Context struct {
	role      Role
	myName    []byte
	theirName []byte
	state     State

	disablePasswordScalarHack bool

	privateKey     [32]byte
	myMsg          [32]byte
	passwordScalar [32]byte
	passwordHash   [64]byte
}

// New returns a Context for the given role and identity strings.
// myName and theirName are bound into the transcript hash but are
// otherwise opaque to this package.
func New(role Role, myName, theirName string) *Context {
	return &Context{
		role:      role,
		myName:    []byte(myName),
		theirName: []byte(theirName),
		state:     StateInit,
	}
}

// SetDisablePasswordScalarHack disables the BoringSSL password-scalar
// compatibility workaround described in spec.md §4.F. The hack is
// enabled by default; disabling it is only interoperable with peers
// that have also disabled it.
func (c *Context) SetDisablePasswordScalarHack(disable bool) {
	c.disablePasswordScalarHack = disable
}

// GenerateMessage runs spec.md §4.F's generate_message(password)
// algorithm: it draws a fresh ephemeral private key, derives this
// party's mask from the password, and returns the 32-byte outgoing
// message. It may be called exactly once per Context, while the
// Context is in its initial state.
func (c *Context) GenerateMessage(password []byte) ([]byte, error) {
	if c.state != StateInit {
		return nil, newError(InvalidState, "GenerateMessage called out of order")
	}

	var seed [64]byte
	if _, err := io.ReadFull(randr, seed[:]); err != nil {
		return nil, newError(Unsupported, "reading random bytes: "+err.Error())
	}
	privateKey := scalar.Reduce(&seed)
	scalar.LeftShift3(&privateKey)
	c.privateKey = privateKey

	p := curve.ScalarMult(curve.BaseTable, &c.privateKey)

	c.passwordHash = hashPassword(password)
	c.passwordScalar = scalar.Reduce(&c.passwordHash)
	if !c.disablePasswordScalarHack {
		applyPasswordScalarHack(&c.passwordScalar)
	}

	maskTable := c.myMaskTable()
	mask := curve.SmallTableMult(maskTable, &c.passwordScalar)

	combined := curve.Add(&p, &mask)
	c.myMsg = combined.Bytes()

	c.state = StateMsgGenerated
	return c.myMsg[:], nil
}

// ProcessMessage runs spec.md §4.F's process_message(their_msg)
// algorithm: it decodes the peer's message, removes the peer's mask,
// computes the Diffie-Hellman value, and returns the 64-byte
// transcript hash that both sides will derive identically when the
// exchange succeeds. It may be called exactly once per Context, after
// GenerateMessage.
func (c *Context) ProcessMessage(theirMsg []byte) ([]byte, error) {
	if c.state != StateMsgGenerated {
		return nil, newError(InvalidState, "ProcessMessage called out of order")
	}
	if len(theirMsg) != 32 {
		return nil, newError(InvalidArgument, "peer message must be 32 bytes")
	}

	decodedNeg, ok := curve.FromBytesNegateVartime(theirMsg)
	if !ok {
		return nil, newError(InvalidPoint, "peer message does not decode to a point on the curve")
	}

	peerMaskTable := c.peerMaskTable()
	peerMask := curve.SmallTableMult(peerMaskTable, &c.passwordScalar)

	// decodedNeg already holds -decoded_point; Q_ext = decoded_point -
	// peer_mask = -(decodedNeg) - peer_mask = -(decodedNeg + peer_mask).
	sumNeg := curve.Add(decodedNeg, &peerMask)
	qExt := curve.Negate(&sumNeg)

	dh := curve.VariableBaseMult(&qExt, &c.privateKey)
	dhBytes := dh.Bytes()

	digest := c.transcriptHash(theirMsg, dhBytes[:])

	c.state = StateKeyGenerated
	return digest, nil
}

// Destroy zero-fills every secret held by c and transitions it to the
// terminal Destroyed state. All operations on a destroyed Context
// fail with InvalidState.
func (c *Context) Destroy() {
	for i := range c.privateKey {
		c.privateKey[i] = 0
	}
	for i := range c.myMsg {
		c.myMsg[i] = 0
	}
	for i := range c.passwordScalar {
		c.passwordScalar[i] = 0
	}
	for i := range c.passwordHash {
		c.passwordHash[i] = 0
	}
	c.state = StateDestroyed
}

func (c *Context) myMaskTable() *curve.SmallTable {
	if c.role == RoleAlice {
		return curve.M
	}
	return curve.N
}

func (c *Context) peerMaskTable() *curve.SmallTable {
	if c.role == RoleAlice {
		return curve.N
	}
	return curve.M
}

// transcriptHash computes spec.md §4.F step 6's role-ordered,
// length-prefixed SHA-512 digest over both identities, both messages,
// the Diffie-Hellman value, and the password hash.
func (c *Context) transcriptHash(theirMsg, dh []byte) []byte {
	h := transcriptHasher()
	if c.role == RoleAlice {
		writeLengthPrefixed(h, c.myName)
		writeLengthPrefixed(h, c.theirName)
		writeLengthPrefixed(h, c.myMsg[:])
		writeLengthPrefixed(h, theirMsg)
	} else {
		writeLengthPrefixed(h, c.theirName)
		writeLengthPrefixed(h, c.myName)
		writeLengthPrefixed(h, theirMsg)
		writeLengthPrefixed(h, c.myMsg[:])
	}
	writeLengthPrefixed(h, dh)
	writeLengthPrefixed(h, c.passwordHash[:])
	return h.Sum(nil)
}

func writeLengthPrefixed(w io.Writer, b []byte) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b)))
	w.Write(lenBuf[:])
	w.Write(b)
}

func hashPassword(password []byte) [64]byte {
	h := passwordHasher()
	h.Write(password)
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}

// applyPasswordScalarHack implements spec.md §4.F step 6: for b in
// {1,2,4}, conditionally add ell*b to the running scalar so that its
// low three bits end up zero. Which bit of byte 0 is tested changes as
// the running scalar is updated by each preceding addition (ell is
// odd), but the bit test and the add are both folded into a single
// constant-time move (scalar.CMove) rather than a branch, because the
// password scalar this operates on is secret (spec.md §5, §9). The
// addition is unreduced and safe from overflow because s starts below
// ell and the three additions total at most 7*ell < 2^256.
func applyPasswordScalarHack(s *[32]byte) {
	ss := scalar.FromBytes32(s[:])
	var ell scalar.Scalar
	copy(ell[:], scalar.EllBytes[:])
	var zero scalar.Scalar

	for _, bit := range []byte{1, 2, 4} {
		shift := 0
		switch bit {
		case 2:
			shift = 1
		case 4:
			shift = 2
		}
		var multiple scalar.Scalar
		multiple = ell
		for i := 0; i < shift; i++ {
			multiple.Double(&multiple)
		}

		bitSet := uint32((ss[0] >> uint(shift)) & 1)
		mask := uint32(0) - bitSet // 0xFFFFFFFF if the bit is set, else 0
		var addend scalar.Scalar
		addend.CMove(&multiple, &zero, mask)
		ss.Add(&ss, &addend)
	}
	out := ss.Bytes()
	copy(s[:], out[:])
}
