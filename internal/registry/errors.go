// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"errors"
	"fmt"

	"github.com/vekos-os/voc/internal/proof"
	"github.com/vekos-os/voc/internal/vhash"
)

// ErrInvalidSignature is returned by RegisterProof when a proof's stored
// signature does not match its recomputed self-hash.
var ErrInvalidSignature = errors.New("registry: invalid proof signature")

// ErrOutOfOrder is returned by RegisterProof when op_id is not exactly
// next_op_id.
type ErrOutOfOrder struct {
	Got, Want uint64
}

func (e *ErrOutOfOrder) Error() string {
	return fmt.Sprintf("registry: op_id %d out of order, want %d", e.Got, e.Want)
}

// ErrStateMismatch is returned by RegisterProof when a proof's
// prev_state does not match the subsystem's current tip.
type ErrStateMismatch struct {
	Subsystem proof.Subsystem
	Got, Want vhash.H
}

func (e *ErrStateMismatch) Error() string {
	return fmt.Sprintf("registry: %s prev_state mismatch", e.Subsystem)
}

// ErrNotFound is returned when an op_id is not present in the index.
var ErrNotFound = errors.New("registry: op_id not found")

// ErrMerkleMismatch is returned by Replay when the recomputed merkle
// root diverges from the in-memory root.
var ErrMerkleMismatch = errors.New("registry: merkle root mismatch on replay")
