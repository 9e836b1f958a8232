// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package proof defines the OperationProof record (§3 of the spec): the
// typed, signed evidence one subsystem emits for a single state
// transition, plus its wire encoding.
//
// Encoding reuses the teacher's wire dependency (github.com/decred/dcrd/
// wire) for the kind payload's varint length prefix, and an explicit
// little-endian encode (encoding/binary for op_id and timestamp,
// internal/vhash's helpers inside kind payloads) for every fixed-width field,
// matching the "little-endian throughout" requirement of the on-disk
// format.
package proof

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/decred/dcrd/wire"
	"github.com/vekos-os/voc/internal/vhash"
)

// maxKindPayload bounds the varint-framed kind payload read back from
// storage; the largest real Kind (Filesystem) is 1+3*32 = 97 bytes.
const maxKindPayload = 512

// OperationProof is an immutable record witnessing a single state
// transition of one subsystem.
type OperationProof struct {
	OpID      uint64
	Subsystem Subsystem
	Kind      Kind
	PrevState vhash.H
	NewState  vhash.H
	Timestamp uint64
	Signature vhash.H
}

// New builds and signs an OperationProof. It is the shared constructor
// behind the producer API's CreateMemoryProof/CreateFSProof/
// CreateProcessProof/boot stage helpers.
func New(opID uint64, subsystem Subsystem, kind Kind, prevState, newState vhash.H, timestamp uint64) (OperationProof, error) {
	p := OperationProof{
		OpID:      opID,
		Subsystem: subsystem,
		Kind:      kind,
		PrevState: prevState,
		NewState:  newState,
		Timestamp: timestamp,
	}
	sig, err := p.computeSignature()
	if err != nil {
		return OperationProof{}, err
	}
	p.Signature = sig
	return p, nil
}

// signedFields returns subsystem ‖ op_id ‖ kind ‖ prev_state ‖ new_state
// ‖ timestamp, the exact byte sequence the signature is computed over.
func (p OperationProof) signedFields() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(p.Subsystem))
	if err := binary.Write(buf, binary.LittleEndian, p.OpID); err != nil {
		return nil, err
	}
	buf.WriteByte(p.Kind.Tag())
	if err := wire.WriteVarBytes(buf, 0, p.Kind.Encode()); err != nil {
		return nil, fmt.Errorf("proof: encode kind: %w", err)
	}
	buf.Write(p.PrevState[:])
	buf.Write(p.NewState[:])
	if err := binary.Write(buf, binary.LittleEndian, p.Timestamp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p OperationProof) computeSignature() (vhash.H, error) {
	b, err := p.signedFields()
	if err != nil {
		return vhash.H{}, err
	}
	return vhash.Sum(b), nil
}

// VerifySignature recomputes signature over the proof's fields and
// reports whether it matches the stored Signature (invariant 1,
// integrity).
func (p OperationProof) VerifySignature() bool {
	sig, err := p.computeSignature()
	if err != nil {
		return false
	}
	return sig == p.Signature
}

// Marshal encodes the proof as it is written to proof-storage: signed
// fields followed by the signature.
func (p OperationProof) Marshal() ([]byte, error) {
	fields, err := p.signedFields()
	if err != nil {
		return nil, err
	}
	return append(fields, p.Signature[:]...), nil
}

// Unmarshal decodes a proof previously produced by Marshal.
func Unmarshal(b []byte) (OperationProof, error) {
	r := bytes.NewReader(b)

	var subsystem byte
	if err := binary.Read(r, binary.LittleEndian, &subsystem); err != nil {
		return OperationProof{}, err
	}
	var opID uint64
	if err := binary.Read(r, binary.LittleEndian, &opID); err != nil {
		return OperationProof{}, err
	}
	tag, err := r.ReadByte()
	if err != nil {
		return OperationProof{}, err
	}
	payload, err := wire.ReadVarBytes(r, 0, maxKindPayload, "kind")
	if err != nil {
		return OperationProof{}, fmt.Errorf("proof: decode kind: %w", err)
	}
	kind, err := DecodeKind(tag, payload)
	if err != nil {
		return OperationProof{}, err
	}

	var prevState, newState vhash.H
	if _, err := io.ReadFull(r, prevState[:]); err != nil {
		return OperationProof{}, err
	}
	if _, err := io.ReadFull(r, newState[:]); err != nil {
		return OperationProof{}, err
	}
	var timestamp uint64
	if err := binary.Read(r, binary.LittleEndian, &timestamp); err != nil {
		return OperationProof{}, err
	}
	var signature vhash.H
	if _, err := io.ReadFull(r, signature[:]); err != nil {
		return OperationProof{}, err
	}

	return OperationProof{
		OpID:      opID,
		Subsystem: Subsystem(subsystem),
		Kind:      kind,
		PrevState: prevState,
		NewState:  newState,
		Timestamp: timestamp,
		Signature: signature,
	}, nil
}

func (p OperationProof) String() string {
	return fmt.Sprintf("OperationProof{op_id=%d subsystem=%s kind=%s ts=%d}",
		p.OpID, p.Subsystem, p.Kind, p.Timestamp)
}
