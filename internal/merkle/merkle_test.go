// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"testing"

	tdproof "github.com/transparency-dev/merkle/proof"

	"github.com/vekos-os/voc/internal/vhash"
)

func leafAt(i int) vhash.H {
	return vhash.Sum([]byte{byte('a' + i)})
}

func TestEmptyTreeRootIsZero(t *testing.T) {
	if got := New().Root(); !vhash.IsZero(got) {
		t.Fatalf("empty tree root = %v, want zero", got)
	}
}

func TestSingleLeafRootIsLeaf(t *testing.T) {
	tr := New()
	leaf := leafAt(0)
	tr.Insert(leaf)
	if got := tr.Root(); got != leaf {
		t.Fatalf("single-leaf root = %v, want %v", got, leaf)
	}
}

func TestProveVerifyRoundTrip(t *testing.T) {
	for n := 1; n <= 11; n++ {
		tr := New()
		for i := 0; i < n; i++ {
			tr.Insert(leafAt(i))
		}
		root := tr.Root()
		for i := 0; i < n; i++ {
			ip, err := tr.Prove(uint64(i))
			if err != nil {
				t.Fatalf("n=%d i=%d: Prove: %v", n, i, err)
			}
			if !Verify(leafAt(i), ip, root) {
				t.Fatalf("n=%d i=%d: Verify failed", n, i)
			}
		}
	}
}

func TestVerifyRejectsWrongLeaf(t *testing.T) {
	tr := New()
	for i := 0; i < 5; i++ {
		tr.Insert(leafAt(i))
	}
	ip, err := tr.Prove(2)
	if err != nil {
		t.Fatal(err)
	}
	if Verify(leafAt(3), ip, tr.Root()) {
		t.Fatal("Verify should reject a proof checked against the wrong leaf")
	}
}

func TestProveOutOfRange(t *testing.T) {
	tr := New()
	tr.Insert(leafAt(0))
	if _, err := tr.Prove(5); err != ErrNotFound {
		t.Fatalf("Prove(5) on a 1-leaf tree: got %v, want ErrNotFound", err)
	}
}

// nodeHasher adapts vhash.Combine to transparency-dev/merkle's NodeHasher
// interface so inclusion proofs can be cross-checked against an
// independent implementation.
type nodeHasher struct{}

func (nodeHasher) HashChildren(left, right []byte) []byte {
	var l, r vhash.H
	copy(l[:], left)
	copy(r[:], right)
	combined := vhash.Combine(l, r)
	return combined[:]
}

// TestCrossValidatePowerOfTwo checks this package's inclusion proofs
// against transparency-dev/merkle's generic verifier for leaf counts
// that are an exact power of two. At those sizes our duplicate-last-node
// construction and transparency-dev's split-at-largest-perfect-subtree
// construction both degenerate to the same perfectly balanced binary
// tree, so an identical (domain-separation-free) node hasher must agree
// on every proof. Leaf counts that are not a power of two are
// intentionally excluded: some level then has an odd node count, the two
// libraries resolve the "dangling" node differently there, so a mismatch
// at those sizes would not indicate a bug in either.
func TestCrossValidatePowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 16} {
		tr := New()
		for i := 0; i < n; i++ {
			tr.Insert(leafAt(i))
		}
		root := tr.Root()
		for i := 0; i < n; i++ {
			ip, err := tr.Prove(uint64(i))
			if err != nil {
				t.Fatalf("n=%d i=%d: Prove: %v", n, i, err)
			}
			siblings := make([][]byte, len(ip.Siblings))
			for j, s := range ip.Siblings {
				b := make([]byte, vhash.Size)
				copy(b, s.Hash[:])
				siblings[j] = b
			}
			leaf := leafAt(i)
			if err := tdproof.VerifyInclusion(nodeHasher{}, uint64(i), uint64(n), leaf[:], siblings, root[:]); err != nil {
				t.Fatalf("n=%d i=%d: cross-validation against transparency-dev/merkle failed: %v", n, i, err)
			}
		}
	}
}
