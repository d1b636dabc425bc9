// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

package spake2

// ErrorKind classifies the small, fixed set of ways a SPAKE2 operation
// can fail (spec.md §7).
type ErrorKind int

const (
	// InvalidState is returned when an operation is called in a state
	// that does not permit it, including after Destroy.
	InvalidState ErrorKind = iota
	// InvalidArgument is returned for malformed caller input, such as a
	// peer message of the wrong length.
	InvalidArgument
	// InvalidPoint is returned when a peer's message does not decode to
	// a point on the curve.
	InvalidPoint
	// Unsupported is returned when the host environment cannot provide
	// something this package depends on: GenerateMessage returns it
	// when reading from the random source fails.
	Unsupported
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidState:
		return "invalid state"
	case InvalidArgument:
		return "invalid argument"
	case InvalidPoint:
		return "invalid point"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every exported operation in this
// package.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return "spake2: " + e.Kind.String() + ": " + e.Msg
}

// Is makes errors.Is(err, ErrInvalidState) etc. work when target is an
// *Error with the same Kind, so callers can use a sentinel-style check
// without reaching into the Msg field.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Sentinel errors for use with errors.Is. Only Kind is compared.
var (
	ErrInvalidState    = &Error{Kind: InvalidState}
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrInvalidPoint    = &Error{Kind: InvalidPoint}
	ErrUnsupported     = &Error{Kind: Unsupported}
)
