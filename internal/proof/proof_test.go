// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proof

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vekos-os/voc/internal/vhash"
)

func TestNewProducesVerifiableSignature(t *testing.T) {
	kind := Memory{Op: MemAlloc, Addr: 0x1000, Size: 4096, FrameHash: vhash.Sum([]byte("frame"))}
	p, err := New(1, SubsystemMemory, kind, vhash.Zero(), vhash.Sum([]byte("new")), 42)
	require.NoError(t, err)
	require.True(t, p.VerifySignature())
}

func TestTamperedFieldInvalidatesSignature(t *testing.T) {
	kind := Memory{Op: MemAlloc, Addr: 0x1000, Size: 4096, FrameHash: vhash.Sum([]byte("frame"))}
	p, err := New(1, SubsystemMemory, kind, vhash.Zero(), vhash.Sum([]byte("new")), 42)
	require.NoError(t, err)

	p.Timestamp++
	require.False(t, p.VerifySignature())
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		kind Kind
	}{
		{"memory", Memory{Op: MemFree, Addr: 0xdead, Size: 8, FrameHash: vhash.Sum([]byte("f"))}},
		{"filesystem", Filesystem{Op: FSWrite, PathHash: vhash.Sum([]byte("/etc/passwd")), ContentHashBefore: vhash.Sum([]byte("before")), ContentHashAfter: vhash.Sum([]byte("after"))}},
		{"boot", Boot{Stage: BootSchedulerReady}},
		{"process", Process{Op: ProcSpawn, PID: 7, ImageHash: vhash.Sum([]byte("elf"))}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			subsystem := SubsystemMemory
			if f, ok := tc.kind.(Filesystem); ok {
				_ = f
				subsystem = SubsystemFilesystem
			}
			p, err := New(3, subsystem, tc.kind, vhash.Zero(), vhash.Sum([]byte("x")), 99)
			require.NoError(t, err)

			b, err := p.Marshal()
			require.NoError(t, err)

			got, err := Unmarshal(b)
			require.NoError(t, err)
			require.Equal(t, p.OpID, got.OpID)
			require.Equal(t, p.Subsystem, got.Subsystem)
			require.Equal(t, p.Kind, got.Kind)
			require.Equal(t, p.PrevState, got.PrevState)
			require.Equal(t, p.NewState, got.NewState)
			require.Equal(t, p.Timestamp, got.Timestamp)
			require.Equal(t, p.Signature, got.Signature)
			require.True(t, got.VerifySignature())
		})
	}
}

func TestDecodeKindRejectsUnknownTag(t *testing.T) {
	_, err := DecodeKind(0xFF, nil)
	require.Error(t, err)
}

func TestDecodeMalformedPayload(t *testing.T) {
	_, err := decodeMemory([]byte{1, 2, 3})
	require.Error(t, err)
}
