// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"github.com/vekos-os/voc/internal/chain"
	"github.com/vekos-os/voc/internal/storage"
)

// Load constructs a Registry and rehydrates it from st's existing proof
// log — the boot-time path described by §4.5, "on boot the registry
// replays from the superblock's checkpoint forward" (replay here always
// starts at genesis per design note §9a; the checkpoint is an audit
// anchor, not a resume offset).
//
// If the log is torn or tampered, Load still returns the Registry
// rehydrated up to the last intact record, alongside a
// *chain.ErrChainBroken naming the first missing op_id — the scenario S3
// "reboot after a flipped bit" case.
func Load(st storage.ProofStorage, capacityPerChain int, opts ...Option) (*Registry, error) {
	r := New(st, capacityPerChain, opts...)

	proofs, truncated, err := st.Recover()
	if err != nil {
		return r, err
	}
	for _, p := range proofs {
		if !p.VerifySignature() {
			return r, ErrInvalidSignature
		}
		r.ingestLocked(p)
	}
	if truncated {
		return r, &chain.ErrChainBroken{AtOpID: uint64(len(proofs)) + 1}
	}
	return r, nil
}
