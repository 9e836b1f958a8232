// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package merkle implements the VOC's incremental merkle tree (MT):
// leaves are proof signatures in insertion order, inserted one at a time
// as the verification registry ingests proofs, with root and
// inclusion-proof queries recomputed from the stored leaves on demand.
//
// The pairwise-reduction algorithm — replace the leftmost entries with
// the hash of each subsequent pair, duplicating the odd one out when a
// level is unbalanced, while recording the sibling hash opposite the
// target leaf at each level — is adapted directly from the teacher's
// GenerateInclusionProof/VerifyInclusionProof
// (blockchain/standalone/inclusionproof.go), generalized from a one-shot
// batch build over a fixed []chainhash.Hash to a Tree type that supports
// Insert one leaf at a time.
package merkle

import (
	"errors"

	"github.com/vekos-os/voc/internal/vhash"
)

// ErrNotFound is returned by Prove when the requested leaf index is out
// of range for the tree's current leaf count.
var ErrNotFound = errors.New("merkle: leaf index not found")

// Sibling is one step of an inclusion proof: the hash of the node
// opposite the path being proven at that level, and whether that sibling
// sits to the left of the path.
type Sibling struct {
	Hash   vhash.H
	OnLeft bool
}

// InclusionProof is the ordered list of sibling hashes from the leaf's
// level up to the root, plus the tree size the proof was computed
// against (Prove results are only meaningful against the root at that
// leaf count).
type InclusionProof struct {
	LeafIndex uint64
	TreeSize  uint64
	Siblings  []Sibling
}

// Tree is a dynamic, incremental binary merkle tree. State is the
// ordered leaf list; Root and Prove recompute levels from it, which
// keeps the "MT.root() equals the recomputed root over stored leaves"
// replay invariant true by construction.
type Tree struct {
	leaves []vhash.H
}

// New returns an empty merkle tree.
func New() *Tree {
	return &Tree{}
}

// NewFromLeaves rebuilds a tree from a known leaf sequence, e.g. during
// registry replay from proof-storage.
func NewFromLeaves(leaves []vhash.H) *Tree {
	t := &Tree{leaves: make([]vhash.H, len(leaves))}
	copy(t.leaves, leaves)
	return t
}

// Insert appends leaf as the next leaf of the tree.
func (t *Tree) Insert(leaf vhash.H) {
	t.leaves = append(t.leaves, leaf)
}

// LeafCount returns the number of leaves inserted so far.
func (t *Tree) LeafCount() uint64 {
	return uint64(len(t.leaves))
}

// Leaves returns the tree's leaves in insertion order. The backing array
// is shared; callers must not mutate it.
func (t *Tree) Leaves() []vhash.H {
	return t.leaves
}

// Root computes the current merkle root. The empty tree's root is
// vhash.Zero(); a single-leaf tree's root is that leaf.
func (t *Tree) Root() vhash.H {
	return Root(t.leaves)
}

// Root computes the merkle root over an arbitrary leaf slice without
// requiring a Tree value, so callers (tests, an independent replay) can
// cross-check a stored root against raw signatures.
func Root(leaves []vhash.H) vhash.H {
	if len(leaves) == 0 {
		return vhash.Zero()
	}
	if len(leaves) == 1 {
		return leaves[0]
	}
	level := dup(leaves)
	for len(level) > 1 {
		if len(level)&1 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]vhash.H, len(level)/2)
		for i := range next {
			next[i] = vhash.Combine(level[i*2], level[i*2+1])
		}
		level = next
	}
	return level[0]
}

// Prove returns an inclusion proof for the leaf at index against the
// tree's current size.
func (t *Tree) Prove(index uint64) (InclusionProof, error) {
	return Prove(t.leaves, index)
}

// Prove computes an inclusion proof for leaves[index] over an arbitrary
// leaf slice, mirroring Root's standalone form.
//
// A proof consists of the ceil(log2(n)) intermediate sibling hashes
// along the path from the target leaf to the root. Folding the leaf hash
// with each sibling, following the OnLeft bit, recomputes the root.
func Prove(leaves []vhash.H, index uint64) (InclusionProof, error) {
	n := uint64(len(leaves))
	if n == 0 || index >= n {
		return InclusionProof{}, ErrNotFound
	}

	level := dup(leaves)
	idx := index
	var siblings []Sibling
	for len(level) > 1 {
		if len(level)&1 != 0 {
			level = append(level, level[len(level)-1])
		}
		half := idx >> 1
		next := make([]vhash.H, len(level)/2)
		for i := range next {
			left, right := level[i*2], level[i*2+1]
			if uint64(i) == half {
				if idx&1 != 0 {
					siblings = append(siblings, Sibling{Hash: left, OnLeft: true})
				} else {
					siblings = append(siblings, Sibling{Hash: right, OnLeft: false})
				}
			}
			next[i] = vhash.Combine(left, right)
		}
		level = next
		idx = half
	}

	return InclusionProof{LeafIndex: index, TreeSize: n, Siblings: siblings}, nil
}

// Verify folds leaf with each sibling of proof, following the OnLeft
// bits, and reports whether the recomputed root matches root.
func Verify(leaf vhash.H, proof InclusionProof, root vhash.H) bool {
	if len(proof.Siblings) > 64 {
		return false
	}
	maxIndex := uint64(1)<<uint(len(proof.Siblings)) - 1
	if proof.LeafIndex > maxIndex {
		return false
	}

	intermediate := leaf
	for _, s := range proof.Siblings {
		if s.OnLeft {
			intermediate = vhash.Combine(s.Hash, intermediate)
		} else {
			intermediate = vhash.Combine(intermediate, s.Hash)
		}
	}
	return intermediate == root
}

func dup(leaves []vhash.H) []vhash.H {
	allocLen := len(leaves) + len(leaves)&1
	out := make([]vhash.H, len(leaves), allocLen)
	copy(out, leaves)
	return out
}
