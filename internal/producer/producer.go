// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package producer implements the VOC's producer API (§6): the
// constructors subsystems call to build a signed OperationProof, plus
// Submit/SubmitDeferred, the two ways to hand one to the verification
// registry from a blocking or IRQ context.
//
// A constructed proof's op_id is only a prediction of the registry's
// current next_op_id — the real assignment and ordering check happens
// inside the registry's mutex at Submit time (design note §9, "op_id
// assignment happens inside the VR mutex"). A concurrent Submit from
// another producer can race this one and invalidate the prediction;
// Submit surfaces that as *registry.ErrOutOfOrder for the caller to
// retry, per §7 ("memory allocations: yes with backoff").
package producer

import (
	"sync"
	"time"

	"github.com/vekos-os/voc/internal/proof"
	"github.com/vekos-os/voc/internal/registry"
	"github.com/vekos-os/voc/internal/vhash"
)

// Clock returns a monotonically-increasing cycle-ish counter standing
// in for the kernel's TSC read; tests inject a deterministic one.
type Clock func() uint64

// SystemClock is the default Clock, backed by the wall clock.
func SystemClock() uint64 {
	return uint64(time.Now().UnixNano())
}

// Producer is the per-caller façade over a Registry. Memory, filesystem,
// and process collaborators each hold one.
type Producer struct {
	reg   *registry.Registry
	clock Clock
}

// New returns a Producer bound to reg, using clock (SystemClock if nil)
// as the proof timestamp source.
func New(reg *registry.Registry, clock Clock) *Producer {
	if clock == nil {
		clock = SystemClock
	}
	return &Producer{reg: reg, clock: clock}
}

// nextState derives a subsystem's post-operation state hash from its
// pre-operation state and the operation's own content, so continuity
// (prev_state_{k+1} == new_state_k) holds by construction rather than by
// the caller separately tracking state.
func nextState(prevState vhash.H, kind proof.Kind) vhash.H {
	return vhash.Combine(prevState, vhash.Sum(kind.Encode()))
}

func (p *Producer) build(subsystem proof.Subsystem, kind proof.Kind) (proof.OperationProof, error) {
	prevState := p.reg.LatestState(subsystem)
	newState := nextState(prevState, kind)
	opID := p.reg.NextOpID()
	return proof.New(opID, subsystem, kind, prevState, newState, p.clock())
}

// CreateMemoryProof builds a Memory{op, addr, size, frame_hash} proof.
func (p *Producer) CreateMemoryProof(op proof.MemOp, addr, size uint64, frameHash vhash.H) (proof.OperationProof, error) {
	return p.build(proof.SubsystemMemory, proof.Memory{Op: op, Addr: addr, Size: size, FrameHash: frameHash})
}

// CreateFSProof builds a Filesystem{op, path_hash, content_hash_before,
// content_hash_after} proof. The raw path is hashed here so the stored
// proof never carries a plaintext path.
func (p *Producer) CreateFSProof(op proof.FSOp, path string, before, after vhash.H) (proof.OperationProof, error) {
	kind := proof.Filesystem{
		Op:                op,
		PathHash:          vhash.Sum([]byte(path)),
		ContentHashBefore: before,
		ContentHashAfter:  after,
	}
	return p.build(proof.SubsystemFilesystem, kind)
}

// CreateProcessProof builds a Process{op, pid, image_hash} proof.
func (p *Producer) CreateProcessProof(op proof.ProcOp, pid uint64, image []byte) (proof.OperationProof, error) {
	kind := proof.Process{Op: op, PID: pid, ImageHash: vhash.Sum(image)}
	return p.build(proof.SubsystemProcess, kind)
}

// Submit registers p synchronously; callers that can block (syscall
// context) use this.
func (p *Producer) Submit(op proof.OperationProof) error {
	return p.reg.RegisterProof(op)
}

// SubmitDeferred enqueues p on its subsystem's bounded ring without
// blocking; callers that cannot block (simulated IRQ context) use this.
func (p *Producer) SubmitDeferred(op proof.OperationProof) {
	p.reg.SubmitDeferred(op)
}

var (
	globalOnce sync.Once
	global     *Producer
)

// InitGlobal binds the process-wide Producer every true IRQ call site
// uses, since an interrupt handler has no way to receive one as an
// explicit argument. It is a no-op after the first call, so only
// cmd/vekosctl's startup path (or a test's setup) should call it.
func InitGlobal(reg *registry.Registry, clock Clock) {
	globalOnce.Do(func() {
		global = New(reg, clock)
	})
}

// Global returns the process-wide Producer bound by InitGlobal, or nil
// if it has not been called yet.
func Global() *Producer {
	return global
}
