// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vhash is the VOC's content-hash primitive. It wraps the same
// blake256 hash the teacher uses for merkle inclusion proofs
// (blockchain/standalone/inclusionproof.go) so the rest of the chain can
// work in terms of a single opaque, fixed-width, endianness-independent H.
package vhash

import (
	"encoding/binary"

	"github.com/decred/dcrd/chaincfg/chainhash"
)

// H is the VOC's opaque 256-bit content hash. Equality and ordering are
// defined bytewise.
type H = chainhash.Hash

// Size is the width of H in bytes.
const Size = chainhash.HashSize

// Zero is the identity value used as a hash-chain seed and as the root of
// an empty merkle tree.
func Zero() H {
	return H{}
}

// Sum computes H(b) over an arbitrary byte sequence.
func Sum(b []byte) H {
	return chainhash.HashH(b)
}

// Combine computes H(a ‖ b), the binary combiner used by both the hash
// chain and the merkle tree.
func Combine(a, b H) H {
	var buf [2 * Size]byte
	copy(buf[:Size], a[:])
	copy(buf[Size:], b[:])
	return chainhash.HashH(buf[:])
}

// IsZero reports whether h is the identity value.
func IsZero(h H) bool {
	return h == H{}
}

// PutUint64LE appends the little-endian encoding of v to dst. All
// multibyte proof fields are hashed after this kind of explicit
// little-endian encode, never a raw struct memory dump, so the signature
// is deterministic across host endianness.
func PutUint64LE(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// PutUint32LE appends the little-endian encoding of v to dst.
func PutUint32LE(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}
