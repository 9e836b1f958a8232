// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proof

import (
	"encoding/binary"
	"fmt"

	"github.com/vekos-os/voc/internal/vhash"
)

// Kind is the subsystem-scoped variant carrying operation-specific
// evidence for one OperationProof. New subsystems are added by
// extending this closed set of concrete types and the tag switch in
// DecodeKind, not by introducing dynamic dispatch over an open
// interface hierarchy (design note §9).
type Kind interface {
	// Tag is the one-byte discriminant stored on the wire.
	Tag() byte
	// Encode returns the kind's fields, little-endian, as the payload
	// that is varint-framed and hashed into the proof signature.
	Encode() []byte
	fmt.Stringer
}

const (
	tagMemory byte = iota + 1
	tagFilesystem
	tagBoot
	tagProcess
)

// MemOp enumerates memory-subsystem operations.
type MemOp uint8

const (
	MemAlloc MemOp = iota + 1
	MemFree
	MemMap
	MemUnmap
)

func (o MemOp) String() string {
	switch o {
	case MemAlloc:
		return "Alloc"
	case MemFree:
		return "Free"
	case MemMap:
		return "Map"
	case MemUnmap:
		return "Unmap"
	default:
		return "Unknown"
	}
}

// Memory is the Kind for Memory{op, addr, size, frame_hash} proofs.
type Memory struct {
	Op        MemOp
	Addr      uint64
	Size      uint64
	FrameHash vhash.H
}

func (Memory) Tag() byte { return tagMemory }

func (m Memory) Encode() []byte {
	buf := make([]byte, 0, 1+8+8+vhash.Size)
	buf = append(buf, byte(m.Op))
	buf = vhash.PutUint64LE(buf, m.Addr)
	buf = vhash.PutUint64LE(buf, m.Size)
	buf = append(buf, m.FrameHash[:]...)
	return buf
}

func (m Memory) String() string {
	return fmt.Sprintf("Memory{%s addr=%#x size=%d}", m.Op, m.Addr, m.Size)
}

func decodeMemory(b []byte) (Memory, error) {
	if len(b) != 1+8+8+vhash.Size {
		return Memory{}, fmt.Errorf("proof: malformed Memory payload (%d bytes)", len(b))
	}
	m := Memory{Op: MemOp(b[0])}
	m.Addr = binary.LittleEndian.Uint64(b[1:9])
	m.Size = binary.LittleEndian.Uint64(b[9:17])
	copy(m.FrameHash[:], b[17:])
	return m, nil
}

// FSOp enumerates filesystem-subsystem operations.
type FSOp uint8

const (
	FSCreate FSOp = iota + 1
	FSWrite
	FSDelete
	FSMkdir
	FSRmdir
)

func (o FSOp) String() string {
	switch o {
	case FSCreate:
		return "Create"
	case FSWrite:
		return "Write"
	case FSDelete:
		return "Delete"
	case FSMkdir:
		return "Mkdir"
	case FSRmdir:
		return "Rmdir"
	default:
		return "Unknown"
	}
}

// Filesystem is the Kind for Filesystem{op, path_hash,
// content_hash_before, content_hash_after} proofs.
type Filesystem struct {
	Op                FSOp
	PathHash          vhash.H
	ContentHashBefore vhash.H
	ContentHashAfter  vhash.H
}

func (Filesystem) Tag() byte { return tagFilesystem }

func (f Filesystem) Encode() []byte {
	buf := make([]byte, 0, 1+3*vhash.Size)
	buf = append(buf, byte(f.Op))
	buf = append(buf, f.PathHash[:]...)
	buf = append(buf, f.ContentHashBefore[:]...)
	buf = append(buf, f.ContentHashAfter[:]...)
	return buf
}

func (f Filesystem) String() string {
	return fmt.Sprintf("Filesystem{%s path=%s}", f.Op, f.PathHash)
}

func decodeFilesystem(b []byte) (Filesystem, error) {
	if len(b) != 1+3*vhash.Size {
		return Filesystem{}, fmt.Errorf("proof: malformed Filesystem payload (%d bytes)", len(b))
	}
	f := Filesystem{Op: FSOp(b[0])}
	off := 1
	copy(f.PathHash[:], b[off:off+vhash.Size])
	off += vhash.Size
	copy(f.ContentHashBefore[:], b[off:off+vhash.Size])
	off += vhash.Size
	copy(f.ContentHashAfter[:], b[off:off+vhash.Size])
	return f, nil
}

// BootStage enumerates boot-verification driver transitions. The set is
// wider than spec.md's illustrative minimum (GDTLoaded..Complete): it
// includes every transition the boot driver's state machine (§4.6) makes,
// since scenario S1 expects exactly 7 boot proofs.
type BootStage uint8

const (
	BootGDTLoaded BootStage = iota + 1
	BootIDTLoaded
	BootMemoryInitialized
	BootHeapInitialized
	BootSchedulerReady
	BootFilesystemReady
	BootComplete
)

func (s BootStage) String() string {
	switch s {
	case BootGDTLoaded:
		return "GDTLoaded"
	case BootIDTLoaded:
		return "IDTLoaded"
	case BootMemoryInitialized:
		return "MemoryInitialized"
	case BootHeapInitialized:
		return "HeapInitialized"
	case BootSchedulerReady:
		return "SchedulerReady"
	case BootFilesystemReady:
		return "FilesystemReady"
	case BootComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Boot is the Kind for Boot{stage} proofs.
type Boot struct {
	Stage BootStage
}

func (Boot) Tag() byte { return tagBoot }

func (b Boot) Encode() []byte {
	return []byte{byte(b.Stage)}
}

func (b Boot) String() string {
	return fmt.Sprintf("Boot{%s}", b.Stage)
}

func decodeBoot(b []byte) (Boot, error) {
	if len(b) != 1 {
		return Boot{}, fmt.Errorf("proof: malformed Boot payload (%d bytes)", len(b))
	}
	return Boot{Stage: BootStage(b[0])}, nil
}

// ProcOp enumerates process-subsystem operations.
type ProcOp uint8

const (
	ProcSpawn ProcOp = iota + 1
	ProcExit
	ProcSchedule
)

func (o ProcOp) String() string {
	switch o {
	case ProcSpawn:
		return "Spawn"
	case ProcExit:
		return "Exit"
	case ProcSchedule:
		return "Schedule"
	default:
		return "Unknown"
	}
}

// Process is the Kind for Process{op, pid, image_hash} proofs.
type Process struct {
	Op        ProcOp
	PID       uint64
	ImageHash vhash.H
}

func (Process) Tag() byte { return tagProcess }

func (p Process) Encode() []byte {
	buf := make([]byte, 0, 1+8+vhash.Size)
	buf = append(buf, byte(p.Op))
	buf = vhash.PutUint64LE(buf, p.PID)
	buf = append(buf, p.ImageHash[:]...)
	return buf
}

func (p Process) String() string {
	return fmt.Sprintf("Process{%s pid=%d}", p.Op, p.PID)
}

func decodeProcess(b []byte) (Process, error) {
	if len(b) != 1+8+vhash.Size {
		return Process{}, fmt.Errorf("proof: malformed Process payload (%d bytes)", len(b))
	}
	p := Process{Op: ProcOp(b[0])}
	p.PID = binary.LittleEndian.Uint64(b[1:9])
	copy(p.ImageHash[:], b[9:])
	return p, nil
}

// DecodeKind reconstructs a Kind from its wire tag and payload.
func DecodeKind(tag byte, payload []byte) (Kind, error) {
	switch tag {
	case tagMemory:
		return decodeMemory(payload)
	case tagFilesystem:
		return decodeFilesystem(payload)
	case tagBoot:
		return decodeBoot(payload)
	case tagProcess:
		return decodeProcess(payload)
	default:
		return nil, fmt.Errorf("proof: unknown kind tag %d", tag)
	}
}
