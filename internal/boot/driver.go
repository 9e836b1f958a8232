// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package boot implements the boot-verification driver (§4.6): a small
// state machine that sequences Boot proofs for
// Start → GDTLoaded → IDTLoaded → MemoryInitialized → HeapInitialized →
// SchedulerReady → FilesystemReady → Complete, fatal on any stage's
// verification failure, non-fatal for everything else.
//
// Staged progress logging is adapted from the teacher's rescan loop in
// cmd/rebuilddb2/rebuilddb2.go ("Processing blocks %d to %d...",
// periodic progress lines); a failed stage propagates up to the caller
// exactly the way the teacher's mainCore() error propagates to main's
// os.Exit(1).
package boot

import (
	"fmt"

	"github.com/decred/slog"

	"github.com/vekos-os/voc/internal/producer"
	"github.com/vekos-os/voc/internal/proof"
	"github.com/vekos-os/voc/internal/registry"
	"github.com/vekos-os/voc/internal/vhash"
)

// maxErrorRing is the bounded size of the boot error ring (§4.6).
const maxErrorRing = 32

// Sequence is the fixed order of stage transitions past Start, the
// order S1 (clean boot) expects proofs in.
var Sequence = []proof.BootStage{
	proof.BootGDTLoaded,
	proof.BootIDTLoaded,
	proof.BootMemoryInitialized,
	proof.BootHeapInitialized,
	proof.BootSchedulerReady,
	proof.BootFilesystemReady,
	proof.BootComplete,
}

// Driver sequences boot-stage proofs through a Registry.
type Driver struct {
	reg     *registry.Registry
	log     slog.Logger
	clock   producer.Clock
	errRing []string
	stage   proof.BootStage
}

// NewDriver returns a Driver at the Start state, bound to reg.
func NewDriver(reg *registry.Registry, log slog.Logger, clock producer.Clock) *Driver {
	if log == nil {
		log = slog.Disabled
	}
	if clock == nil {
		clock = producer.SystemClock
	}
	return &Driver{reg: reg, log: log, clock: clock}
}

// Stage returns the last successfully completed stage (zero value before
// any transition).
func (d *Driver) Stage() proof.BootStage {
	return d.stage
}

// Errors returns the bounded error ring, oldest first.
func (d *Driver) Errors() []string {
	out := make([]string, len(d.errRing))
	copy(out, d.errRing)
	return out
}

func (d *Driver) recordError(msg string) {
	d.errRing = append(d.errRing, msg)
	if len(d.errRing) > maxErrorRing {
		d.errRing = d.errRing[1:]
	}
}

// Warn logs and records a non-fatal boot warning (e.g. optional device
// init failing) without advancing or breaking the chain.
func (d *Driver) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	d.log.Warnf("%s", msg)
	d.recordError(msg)
}

// Advance emits and registers the Boot proof for stage. Its prev_state
// is the driver's current state tip; its new_state is
// H(stage_tag ‖ tsc_now) directly, not folded from prev_state, per §4.6 —
// the boot chain's continuity invariant still holds because registration
// checks prev_state against the registry's last recorded Boot new_state.
//
// A failed Advance is always fatal to boot (§4.6): the failure is
// recorded in the error ring and returned as an error to the caller,
// which is expected to flush the ring (Fatal) and abort.
func (d *Driver) Advance(stage proof.BootStage) error {
	prevState := d.reg.LatestState(proof.SubsystemBoot)
	tscNow := d.clock()

	tag := append([]byte{byte(stage)}, vhash.PutUint64LE(nil, tscNow)...)
	newState := vhash.Sum(tag)

	opID := d.reg.NextOpID()
	kind := proof.Boot{Stage: stage}
	p, err := proof.New(opID, proof.SubsystemBoot, kind, prevState, newState, tscNow)
	if err != nil {
		d.recordError(fmt.Sprintf("stage %s: build proof: %v", stage, err))
		return err
	}

	if err := d.reg.RegisterProof(p); err != nil {
		d.recordError(fmt.Sprintf("stage %s: %v", stage, err))
		return fmt.Errorf("boot: stage %s fatal: %w", stage, err)
	}

	d.stage = stage
	d.log.Infof("boot stage verified: %s (op_id=%d)", stage, p.OpID)
	return nil
}

// RunAll advances through every stage of Sequence in order, stopping at
// the first fatal failure.
func (d *Driver) RunAll() error {
	for _, stage := range Sequence {
		if err := d.Advance(stage); err != nil {
			return err
		}
	}
	return nil
}

// Fatal logs err and the full error ring at critical severity, the
// moral equivalent of a kernel panic flushing its boot error ring to
// serial before halting. It returns err unchanged so callers can still
// propagate it (e.g. to os.Exit(1)).
func (d *Driver) Fatal(err error) error {
	d.log.Criticalf("boot panic: %v", err)
	for _, msg := range d.Errors() {
		d.log.Criticalf("boot error ring: %s", msg)
	}
	return err
}
