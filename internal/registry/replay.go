// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"fmt"

	"github.com/vekos-os/voc/internal/chain"
	"github.com/vekos-os/voc/internal/merkle"
	"github.com/vekos-os/voc/internal/proof"
	"github.com/vekos-os/voc/internal/vhash"
)

// Replay reconstructs every subsystem's hash chain and the merkle tree
// from proof-storage and compares the result against the registry's
// current in-memory state (§4.4). Replay is read-only; it never mutates
// the registry.
//
// Recover truncating the log at a torn or tampered record (storage's
// CRC framing, §4.5) is itself evidence of corruption at the first
// missing op_id — the same observable effect as a deliberately flipped
// bit in a previously-durable record, since either way the stored bytes
// no longer match the CRC computed when they were written. Replay
// reports that as ChainBroken at that op_id (scenario S3).
func (r *Registry) Replay() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	proofs, truncated, err := r.storage.Recover()
	if err != nil {
		return fmt.Errorf("registry: recover: %w", err)
	}
	if truncated {
		return &chain.ErrChainBroken{AtOpID: uint64(len(proofs)) + 1}
	}

	freshChains := make(map[proof.Subsystem]*chain.Chain, len(proof.All))
	for _, s := range proof.All {
		freshChains[s] = chain.New(r.capacityPerChain)
	}

	freshTree := merkle.New()
	seenAny := make(map[proof.Subsystem]bool, len(proof.All))
	prevState := make(map[proof.Subsystem]vhash.H, len(proof.All))

	for i, p := range proofs {
		wantOpID := uint64(i) + 1
		if p.OpID != wantOpID {
			return &chain.ErrChainBroken{AtOpID: wantOpID}
		}
		if !p.VerifySignature() {
			return &chain.ErrChainBroken{AtOpID: p.OpID}
		}
		if seenAny[p.Subsystem] && p.PrevState != prevState[p.Subsystem] {
			return &chain.ErrChainBroken{AtOpID: p.OpID}
		}

		freshChains[p.Subsystem].Append(p.OpID, p.Signature)
		freshTree.Insert(p.Signature)
		prevState[p.Subsystem] = p.NewState
		seenAny[p.Subsystem] = true
	}

	for _, s := range proof.All {
		if freshChains[s].LastLink() != r.chains[s].LastLink() {
			return &chain.ErrChainBroken{AtOpID: r.nextOpID}
		}
	}
	if freshTree.Root() != r.tree.Root() {
		return ErrMerkleMismatch
	}
	return nil
}

// IntegrityWarnings reports non-fatal deferred-submission ring overflows
// observed so far, keyed by subsystem — the RingOverflow warning of §7,
// surfaced by the `verify` shell command alongside any replay error.
func (r *Registry) IntegrityWarnings() map[proof.Subsystem]uint64 {
	return r.DroppedCounts()
}

// VerifyInclusion is a convenience wrapper over merkle.Verify that checks
// a leaf's inclusion proof against a root in one call.
func VerifyInclusion(leaf vhash.H, ip merkle.InclusionProof, root vhash.H) bool {
	return merkle.Verify(leaf, ip, root)
}
