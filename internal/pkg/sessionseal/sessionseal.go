// Copyright (c) 2024 The spake2-go Authors. All rights reserved.
//
// Use of this source code is governed by the BSD-style license that can be
// found in the LICENSE file.

// Package sessionseal offers authenticated encryption keyed off a
// SPAKE2-derived shared secret (spec.md §4.G, a supplemented feature:
// the core exchange only produces the 64-byte digest, but a caller
// almost always wants to use it to protect some application data).
// AES-128 in CBC mode is combined with HMAC-SHA256 in
// encrypt-then-authenticate mode, with both keys split out of the
// shared secret via HKDF.
package sessionseal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

func hasher() hash.Hash {
	return sha256.New()
}

// DeriveKeys splits a SPAKE2 transcript hash (or any sufficiently
// random secret) into a 16-byte CBC key and a 16-byte HMAC key via
// HKDF-SHA256.
func DeriveKeys(secret []byte) (cbcKey, hmacKey []byte, err error) {
	kdfr := hkdf.New(hasher, secret, nil, nil)
	cbcKey = make([]byte, 16)
	hmacKey = make([]byte, 16)
	if _, err = io.ReadFull(kdfr, cbcKey); err != nil {
		return nil, nil, err
	}
	if _, err = io.ReadFull(kdfr, hmacKey); err != nil {
		return nil, nil, err
	}
	return cbcKey, hmacKey, nil
}

// Seal encrypts and authenticates plaintext under secret, deriving
// fresh CBC and HMAC keys from it. The output is IV || ciphertext ||
// auth-tag.
func Seal(randr io.Reader, secret, plaintext []byte) ([]byte, error) {
	cbcKey, hmacKey, err := DeriveKeys(secret)
	if err != nil {
		return nil, err
	}
	ciph, err := aes.NewCipher(cbcKey)
	if err != nil {
		panic("aes.NewCipher failed")
	}
	iv := make([]byte, ciph.BlockSize())
	if _, err := io.ReadFull(randr, iv); err != nil {
		return nil, err
	}
	enc := cipher.NewCBCEncrypter(ciph, iv)
	numBlocks := len(plaintext)/ciph.BlockSize() + 1
	res := make([]byte, ciph.BlockSize()+numBlocks*ciph.BlockSize()+hasher().Size())
	copy(res, iv)
	enc.CryptBlocks(res[ciph.BlockSize():], plaintext[0:(numBlocks-1)*ciph.BlockSize()])
	lastBlock := addPadding(ciph.BlockSize(), plaintext[(numBlocks-1)*ciph.BlockSize():])
	enc.CryptBlocks(res[ciph.BlockSize()*numBlocks:], lastBlock)

	mac := hmac.New(hasher, hmacKey)
	if _, err := mac.Write(res[0 : ciph.BlockSize()*(numBlocks+1)]); err != nil {
		return nil, err
	}
	copy(res[ciph.BlockSize()*(numBlocks+1):], mac.Sum(nil))
	return res, nil
}

// ErrAuthtagMismatch is returned by Open when authentication of the
// ciphertext fails.
var ErrAuthtagMismatch = fmt.Errorf("sessionseal: authtag mismatch")

// Open verifies and decrypts input, which must have been produced by
// Seal with the same secret.
func Open(secret, input []byte) ([]byte, error) {
	cbcKey, hmacKey, err := DeriveKeys(secret)
	if err != nil {
		return nil, err
	}
	if len(input) < 3*16 {
		return nil, fmt.Errorf("sessionseal: input too short")
	}
	if len(input)%16 != 0 {
		return nil, fmt.Errorf("sessionseal: invalid input length")
	}
	iv := input[:16]
	ciphertext := input[16 : len(input)-hasher().Size()]
	authtag := input[len(input)-hasher().Size():]

	mac := hmac.New(hasher, hmacKey)
	if _, err := mac.Write(iv); err != nil {
		return nil, err
	}
	if _, err := mac.Write(ciphertext); err != nil {
		return nil, err
	}
	if !hmac.Equal(mac.Sum(nil), authtag) {
		return nil, ErrAuthtagMismatch
	}

	ciph, err := aes.NewCipher(cbcKey)
	if err != nil {
		panic("aes.NewCipher failed")
	}
	dec := cipher.NewCBCDecrypter(ciph, iv)
	plaintext := make([]byte, len(ciphertext))
	dec.CryptBlocks(plaintext, ciphertext)
	return removePadding(ciph.BlockSize(), plaintext)
}

// addPadding pads input using the scheme from RFC 5652 §6.3.
func addPadding(blockSize int, input []byte) []byte {
	out := make([]byte, blockSize*(len(input)/blockSize+1))
	copy(out, input)
	b := byte(blockSize - len(input)%blockSize)
	for i := len(input); i < len(out); i++ {
		out[i] = b
	}
	return out
}

// removePadding removes the padding added by addPadding.
func removePadding(blockSize int, input []byte) ([]byte, error) {
	if len(input) == 0 || len(input)%blockSize != 0 {
		return nil, fmt.Errorf("sessionseal: invalid padded length")
	}
	b := input[len(input)-1]
	if int(b) > blockSize || int(b) == 0 || int(b) > len(input) {
		return nil, fmt.Errorf("sessionseal: invalid padding")
	}
	return input[:len(input)-int(b)], nil
}
