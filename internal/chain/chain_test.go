// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vekos-os/voc/internal/vhash"
)

func TestAppendFoldsFromZero(t *testing.T) {
	c := New(0)
	require.Equal(t, vhash.Zero(), c.LastLink())

	p1 := vhash.Sum([]byte("p1"))
	link1 := c.Append(1, p1)
	require.Equal(t, vhash.Combine(vhash.Zero(), p1), link1)
	require.Equal(t, link1, c.LastLink())

	p2 := vhash.Sum([]byte("p2"))
	link2 := c.Append(2, p2)
	require.Equal(t, vhash.Combine(link1, p2), link2)
	require.Equal(t, 2, c.Len())
}

func TestAppendEvictsPastCapacity(t *testing.T) {
	c := New(2)
	c.Append(1, vhash.Sum([]byte("a")))
	c.Append(2, vhash.Sum([]byte("b")))
	c.Append(3, vhash.Sum([]byte("c")))
	require.Equal(t, 2, c.Len())
	require.Equal(t, uint64(2), c.Entries()[0].OpID)
	require.Equal(t, uint64(3), c.Entries()[1].OpID)
}

func TestResumeSeedsFromTip(t *testing.T) {
	tip := vhash.Sum([]byte("checkpoint"))
	c := Resume(0, tip)
	require.Equal(t, tip, c.LastLink())
	require.Equal(t, 0, c.Len())
}

func TestVerifyDetectsFlippedLink(t *testing.T) {
	p1, p2 := vhash.Sum([]byte("p1")), vhash.Sum([]byte("p2"))
	link1 := vhash.Combine(vhash.Zero(), p1)
	link2 := vhash.Combine(link1, p2)

	_, err := Verify(vhash.Zero(), []uint64{1, 2}, []vhash.H{p1, p2}, []vhash.H{link1, link2})
	require.NoError(t, err)

	tampered := vhash.Sum([]byte("not-the-real-link"))
	_, err = Verify(vhash.Zero(), []uint64{1, 2}, []vhash.H{p1, p2}, []vhash.H{link1, tampered})
	require.Error(t, err)

	var broken *ErrChainBroken
	require.ErrorAs(t, err, &broken)
	require.Equal(t, uint64(2), broken.AtOpID)
}
