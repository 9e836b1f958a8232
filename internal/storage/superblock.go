// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/decred/dcrdata/semver"
	"github.com/vekos-os/voc/internal/vhash"
)

// magic is "VEKOSPRF" read as a big-endian ASCII string, per §6 of the spec.
const magic uint64 = 0x56454B4F53505246

// superblockSize is the fixed on-disk size of the superblock.
const superblockSize = 128

// FormatVersion is the current on-disk format version. Open refuses a
// log whose superblock carries a different major version, so the hash
// algorithm (open question §9c) can be swapped across a major bump
// without silently misreading an older log.
var FormatVersion = semver.NewSemver(1, 0, 0)

type superblock struct {
	version     semver.Semver
	headOffset  uint64
	checkpoint  vhash.H
	opWatermark uint64
}

func newSuperblock() superblock {
	return superblock{
		version:    FormatVersion,
		headOffset: superblockSize,
		checkpoint: vhash.Zero(),
	}
}

// packVersion folds a 3-field semver into the single u32 the on-disk
// layout budgets for the version field.
func packVersion(v semver.Semver) uint32 {
	return (v.Major&0xFF)<<16 | (v.Minor&0xFF)<<8 | (v.Patch & 0xFF)
}

func unpackVersion(v uint32) semver.Semver {
	return semver.NewSemver((v>>16)&0xFF, (v>>8)&0xFF, v&0xFF)
}

func (s superblock) encode() []byte {
	buf := make([]byte, 0, superblockSize)
	buf = vhash.PutUint64LE(buf, magic)
	buf = vhash.PutUint32LE(buf, packVersion(s.version))
	buf = vhash.PutUint64LE(buf, s.headOffset)
	buf = append(buf, s.checkpoint[:]...)
	buf = vhash.PutUint64LE(buf, s.opWatermark)
	reserved := superblockSize - len(buf) - 4
	buf = append(buf, make([]byte, reserved)...)
	crc := crc32.ChecksumIEEE(buf)
	buf = vhash.PutUint32LE(buf, crc)
	return buf
}

func decodeSuperblock(b []byte) (superblock, error) {
	if len(b) != superblockSize {
		return superblock{}, fmt.Errorf("storage: superblock must be %d bytes, got %d", superblockSize, len(b))
	}
	storedCRC := binary.LittleEndian.Uint32(b[superblockSize-4:])
	gotCRC := crc32.ChecksumIEEE(b[:superblockSize-4])
	if storedCRC != gotCRC {
		return superblock{}, fmt.Errorf("storage: superblock crc mismatch")
	}

	gotMagic := binary.LittleEndian.Uint64(b[0:8])
	if gotMagic != magic {
		return superblock{}, fmt.Errorf("storage: bad magic %#x", gotMagic)
	}

	var sb superblock
	sb.version = unpackVersion(binary.LittleEndian.Uint32(b[8:12]))
	sb.headOffset = binary.LittleEndian.Uint64(b[12:20])
	copy(sb.checkpoint[:], b[20:20+vhash.Size])
	sb.opWatermark = binary.LittleEndian.Uint64(b[20+vhash.Size : 28+vhash.Size])
	return sb, nil
}
