// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"sync/atomic"

	"github.com/vekos-os/voc/internal/proof"
)

// ring is the bounded, lock-free-from-the-producer-side single-producer
// queue a simulated IRQ handler pushes onto via SubmitDeferred. Its
// capacity is fixed at construction — IRQ-context allocation is
// forbidden inside the VOC (design note §9) — and a full ring drops the
// newest proof rather than blocking, counting the drop so it surfaces
// later as a RingOverflow integrity warning.
type ring struct {
	subsystem proof.Subsystem
	ch        chan proof.OperationProof
	dropped   atomic.Uint64
}

func newRing(subsystem proof.Subsystem, capacity int) *ring {
	return &ring{subsystem: subsystem, ch: make(chan proof.OperationProof, capacity)}
}

// tryPush enqueues p without blocking, returning false (and counting a
// drop) if the ring is full.
func (r *ring) tryPush(p proof.OperationProof) bool {
	select {
	case r.ch <- p:
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

// droppedCount returns the number of proofs dropped by overflow so far.
func (r *ring) droppedCount() uint64 {
	return r.dropped.Load()
}
