// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/vekos-os/voc/internal/boot"
	"github.com/vekos-os/voc/internal/producer"
)

// cmdBoot runs the boot-verification driver through its full stage
// sequence (§4.6), logging each transition and halting at the first
// fatal failure exactly as a real boot would stop attaching subsystems.
func cmdBoot(e *env) error {
	drv := boot.NewDriver(e.reg, vlogBoot, producer.SystemClock)
	if err := drv.RunAll(); err != nil {
		return drv.Fatal(err)
	}
	vlogShell.Infof("boot complete: stage=%s op_id=%d root=%s",
		drv.Stage(), e.reg.NextOpID()-1, e.reg.Root())
	return nil
}

// cmdVerify replays proof-storage against the live registry and reports
// every integrity warning observed so far (ring overflows), the
// inspection path a real `verify` boot-time check would run.
func cmdVerify(e *env) error {
	if err := e.reg.Replay(); err != nil {
		vlogShell.Errorf("replay FAILED: %v", err)
		return err
	}
	vlogShell.Infof("replay OK: root=%s next_op_id=%d", e.reg.Root(), e.reg.NextOpID())

	warnings := e.reg.IntegrityWarnings()
	if len(warnings) == 0 {
		vlogShell.Infof("no integrity warnings")
		return nil
	}
	for subsystem, n := range warnings {
		vlogShell.Warnf("RingOverflow: %s dropped %d proof(s)", subsystem, n)
	}
	return nil
}

// cmdProof prints opIDArg's inclusion proof (leaf index, tree size and
// each sibling with its side) followed by the current merkle root. It
// does not verify the proof against that root.
func cmdProof(e *env, opIDArg string) error {
	opID, err := strconv.ParseUint(opIDArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid op_id %q: %w", opIDArg, err)
	}

	ip, err := e.reg.InclusionProof(opID)
	if err != nil {
		return err
	}

	root := e.reg.Root()
	vlogShell.Infof("inclusion proof for op_id=%d: leaf_index=%d tree_size=%d siblings=%d",
		opID, ip.LeafIndex, ip.TreeSize, len(ip.Siblings))
	for i, s := range ip.Siblings {
		side := "right"
		if s.OnLeft {
			side = "left"
		}
		fmt.Printf("  %2d: %s (%s)\n", i, hex.EncodeToString(s.Hash[:]), side)
	}
	fmt.Printf("root: %s\n", root)
	return nil
}

// cmdRoot prints the registry's current merkle root and next op_id.
func cmdRoot(e *env) error {
	fmt.Printf("root=%s next_op_id=%d\n", e.reg.Root(), e.reg.NextOpID())
	return nil
}

// cmdDrain starts the registry's deferred-submission worker pool and
// blocks until shutdown is requested — the long-running counterpart to
// the one-shot subcommands, standing in for the kernel's background
// worker that drains the IRQ-safe rings (§5).
func cmdDrain(ctx context.Context, e *env) error {
	vlogShell.Infof("draining deferred-submission rings, ctrl-C to stop")
	return e.reg.Drain(ctx)
}
