// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package producer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vekos-os/voc/internal/proof"
	"github.com/vekos-os/voc/internal/registry"
	"github.com/vekos-os/voc/internal/storage"
	"github.com/vekos-os/voc/internal/vhash"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	st, err := storage.Open(filepath.Join(t.TempDir(), "proof.log"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return registry.New(st, 0)
}

func TestCreateMemoryProofContinuity(t *testing.T) {
	r := newTestRegistry(t)
	p := New(r, func() uint64 { return 1 })

	a, err := p.CreateMemoryProof(proof.MemAlloc, 0x1000, 4096, vhash.Sum([]byte("f1")))
	require.NoError(t, err)
	require.NoError(t, p.Submit(a))

	b, err := p.CreateMemoryProof(proof.MemFree, 0x1000, 4096, vhash.Sum([]byte("f2")))
	require.NoError(t, err)
	require.Equal(t, a.NewState, b.PrevState)
	require.NoError(t, p.Submit(b))
}

func TestCreateFSProofHashesPath(t *testing.T) {
	r := newTestRegistry(t)
	p := New(r, func() uint64 { return 1 })

	before, after := vhash.Sum([]byte("old")), vhash.Sum([]byte("new"))
	op, err := p.CreateFSProof(proof.FSWrite, "/etc/vekos.conf", before, after)
	require.NoError(t, err)

	fs, ok := op.Kind.(proof.Filesystem)
	require.True(t, ok)
	require.Equal(t, vhash.Sum([]byte("/etc/vekos.conf")), fs.PathHash)
	require.Equal(t, before, fs.ContentHashBefore)
	require.Equal(t, after, fs.ContentHashAfter)
}

func TestSystemClockIsMonotonicIsh(t *testing.T) {
	a := SystemClock()
	b := SystemClock()
	require.LessOrEqual(t, a, b)
}

func TestInitGlobalIsOnceOnly(t *testing.T) {
	r1 := newTestRegistry(t)
	InitGlobal(r1, func() uint64 { return 1 })
	first := Global()
	require.NotNil(t, first)

	r2 := newTestRegistry(t)
	InitGlobal(r2, func() uint64 { return 2 })
	require.Same(t, first, Global(), "a second InitGlobal call must not replace the bound producer")
}
