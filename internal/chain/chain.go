// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chain implements the per-subsystem hash chain (HC) of the
// verifiable operation chain: an append-only sequence whose i-th link
// folds in every prior entry, so a single flipped byte anywhere in the
// sequence is detectable by replay.
//
// The fold itself is the same shape as the dual MAC chain in
// other_examples' securelog logger (tagV = fold(tagV, mac) with a
// first-entry special case), specialized to one chain and H::zero() as
// the seed instead of a random per-session key.
package chain

import "github.com/vekos-os/voc/internal/vhash"

// DefaultCapacity is the default size of the bounded in-memory tail.
const DefaultCapacity = 1024

// Entry is one link of the hash chain.
type Entry struct {
	OpID      uint64
	ProofHash vhash.H
	LinkHash  vhash.H
}

// ErrChainBroken is returned by Verify when replay diverges from the
// stored link hash. AtOpID identifies the first offending entry.
type ErrChainBroken struct {
	AtOpID uint64
}

func (e *ErrChainBroken) Error() string {
	return "chain: broken at op_id"
}

// Chain is a single subsystem's hash chain: a running link hash plus a
// bounded tail of recent entries for cheap local replay.
type Chain struct {
	capacity int
	lastLink vhash.H
	entries  []Entry
}

// New creates a chain seeded at vhash.Zero() with the given bounded tail
// capacity (0 means DefaultCapacity).
func New(capacity int) *Chain {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Chain{capacity: capacity, lastLink: vhash.Zero()}
}

// Resume rebuilds a chain whose tip is already known (e.g. from a
// storage checkpoint) without requiring the caller to replay every prior
// entry into memory.
func Resume(capacity int, tip vhash.H) *Chain {
	c := New(capacity)
	c.lastLink = tip
	return c
}

// LastLink returns the current chain tip.
func (c *Chain) LastLink() vhash.H {
	return c.lastLink
}

// Len returns the number of entries held in the bounded in-memory tail.
func (c *Chain) Len() int {
	return len(c.entries)
}

// Entries returns the bounded in-memory tail, oldest first. The backing
// array is shared; callers must not mutate it.
func (c *Chain) Entries() []Entry {
	return c.entries
}

// Append computes link_i = H(link_{i-1} ‖ proofHash), appends the entry,
// and evicts the oldest entry once the tail exceeds capacity. Append is
// infallible given well-formed input: the only way to detect corruption
// is Verify.
//
// Callers (the registry) must only evict-safe entries that are already
// durable in proof-storage, which in this implementation means: call
// Append only after the corresponding storage.Append has succeeded.
func (c *Chain) Append(opID uint64, proofHash vhash.H) vhash.H {
	link := vhash.Combine(c.lastLink, proofHash)
	c.entries = append(c.entries, Entry{OpID: opID, ProofHash: proofHash, LinkHash: link})
	if len(c.entries) > c.capacity {
		c.entries = c.entries[1:]
	}
	c.lastLink = link
	return link
}

// Verify replays proofHashes forward from anchor (vhash.Zero() at genesis,
// or a stored checkpoint link) and reports the first op_id whose
// recomputed link diverges from want. Verify never mutates chain state.
func Verify(anchor vhash.H, opIDs []uint64, proofHashes []vhash.H, want []vhash.H) (vhash.H, error) {
	link := anchor
	for i, ph := range proofHashes {
		link = vhash.Combine(link, ph)
		if link != want[i] {
			return link, &ErrChainBroken{AtOpID: opIDs[i]}
		}
	}
	return link, nil
}
