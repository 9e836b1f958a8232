// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vekos-os/voc/internal/producer"
	"github.com/vekos-os/voc/internal/proof"
	"github.com/vekos-os/voc/internal/storage"
	"github.com/vekos-os/voc/internal/vhash"
)

func newTestStorage(t *testing.T) *storage.FileStorage {
	t.Helper()
	st, err := storage.Open(filepath.Join(t.TempDir(), "proof.log"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRegisterProofAppendsChainAndTree(t *testing.T) {
	st := newTestStorage(t)
	r := New(st, 0)
	prod := producer.New(r, func() uint64 { return 1 })

	p, err := prod.CreateMemoryProof(proof.MemAlloc, 0x2000, 4096, vhash.Sum([]byte("frame")))
	require.NoError(t, err)
	require.NoError(t, prod.Submit(p))

	require.Equal(t, uint64(2), r.NextOpID())
	require.NotEqual(t, vhash.Zero(), r.Root())
	require.Equal(t, p.NewState, r.LatestState(proof.SubsystemMemory))
}

func TestRegisterProofRejectsOutOfOrder(t *testing.T) {
	st := newTestStorage(t)
	r := New(st, 0)

	kind := proof.Boot{Stage: proof.BootGDTLoaded}
	p, err := proof.New(2, proof.SubsystemBoot, kind, vhash.Zero(), vhash.Sum([]byte("x")), 1)
	require.NoError(t, err)

	err = r.RegisterProof(p)
	var outOfOrder *ErrOutOfOrder
	require.ErrorAs(t, err, &outOfOrder)
	require.Equal(t, uint64(1), outOfOrder.Want)
}

func TestRegisterProofRejectsStateMismatch(t *testing.T) {
	st := newTestStorage(t)
	r := New(st, 0)

	kind := proof.Boot{Stage: proof.BootGDTLoaded}
	bad, err := proof.New(1, proof.SubsystemBoot, kind, vhash.Sum([]byte("not-zero")), vhash.Sum([]byte("x")), 1)
	require.NoError(t, err)

	err = r.RegisterProof(bad)
	var mismatch *ErrStateMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestRegisterProofRejectsInvalidSignature(t *testing.T) {
	st := newTestStorage(t)
	r := New(st, 0)

	kind := proof.Boot{Stage: proof.BootGDTLoaded}
	p, err := proof.New(1, proof.SubsystemBoot, kind, vhash.Zero(), vhash.Sum([]byte("x")), 1)
	require.NoError(t, err)
	p.Timestamp++

	require.ErrorIs(t, r.RegisterProof(p), ErrInvalidSignature)
}

func TestInclusionProofVerifies(t *testing.T) {
	st := newTestStorage(t)
	r := New(st, 0)
	prod := producer.New(r, func() uint64 { return 1 })

	var last proof.OperationProof
	for i := 0; i < 4; i++ {
		p, err := prod.CreateProcessProof(proof.ProcSpawn, uint64(i), []byte("image"))
		require.NoError(t, err)
		require.NoError(t, prod.Submit(p))
		last = p
	}

	ip, err := r.InclusionProof(last.OpID)
	require.NoError(t, err)
	require.True(t, VerifyInclusion(last.Signature, ip, r.Root()))
}

func TestReplayDetectsHealthyRegistry(t *testing.T) {
	st := newTestStorage(t)
	r := New(st, 0)
	prod := producer.New(r, func() uint64 { return 1 })

	for i := 0; i < 3; i++ {
		p, err := prod.CreateMemoryProof(proof.MemAlloc, uint64(i), 4096, vhash.Sum([]byte("f")))
		require.NoError(t, err)
		require.NoError(t, prod.Submit(p))
	}
	require.NoError(t, r.Replay())
}

func TestLoadRehydratesFromExistingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proof.log")
	st, err := storage.Open(path, nil)
	require.NoError(t, err)

	r := New(st, 0)
	prod := producer.New(r, func() uint64 { return 1 })
	var last proof.OperationProof
	for i := 0; i < 3; i++ {
		p, err := prod.CreateMemoryProof(proof.MemAlloc, uint64(i), 4096, vhash.Sum([]byte("f")))
		require.NoError(t, err)
		require.NoError(t, prod.Submit(p))
		last = p
	}
	wantRoot := r.Root()
	require.NoError(t, st.Close())

	st2, err := storage.Open(path, nil)
	require.NoError(t, err)
	defer st2.Close()

	r2, err := Load(st2, 0)
	require.NoError(t, err)
	require.Equal(t, wantRoot, r2.Root())
	require.Equal(t, uint64(4), r2.NextOpID())
	require.Equal(t, last.NewState, r2.LatestState(proof.SubsystemMemory))
}

func TestSubmitDeferredEnqueuesOnSubsystemRing(t *testing.T) {
	st := newTestStorage(t)
	r := New(st, 0)
	prod := producer.New(r, func() uint64 { return 1 })

	p, err := prod.CreateMemoryProof(proof.MemAlloc, 1, 4096, vhash.Sum([]byte("f")))
	require.NoError(t, err)
	prod.SubmitDeferred(p)

	ring := r.rings[proof.SubsystemMemory]
	got := <-ring.ch
	require.Equal(t, p.OpID, got.OpID)
}

func TestDroppedCountsReportsRingOverflow(t *testing.T) {
	st := newTestStorage(t)
	r := New(st, 1, WithRingCapacity(1))

	prod := producer.New(r, func() uint64 { return 1 })
	p1, err := prod.CreateMemoryProof(proof.MemAlloc, 1, 4096, vhash.Sum([]byte("f")))
	require.NoError(t, err)
	p2, err := prod.CreateMemoryProof(proof.MemAlloc, 2, 4096, vhash.Sum([]byte("f")))
	require.NoError(t, err)

	prod.SubmitDeferred(p1)
	prod.SubmitDeferred(p2)

	counts := r.DroppedCounts()
	require.Equal(t, uint64(1), counts[proof.SubsystemMemory])
}
