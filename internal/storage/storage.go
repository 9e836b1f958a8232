// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage implements the VOC's durable back-end (§4.5, §6): an
// append-only log with record framing {len, crc32, bytes} behind a fixed
// 128-byte superblock checkpoint.
//
// The choice to drive fsync and positioned writes directly off *os.File
// rather than a buffering/serialization library follows the
// teacher-adjacent mhutchinson-trillian-tessera posix storage example
// (storage/posix/files.go), which makes the same call for the same
// reason: the on-disk byte layout here is fixed by the spec, and a
// generic encoding library would fight that layout rather than help it.
// See DESIGN.md for the full stdlib justification.
package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sync"

	"github.com/decred/slog"
	"github.com/vekos-os/voc/internal/proof"
	"github.com/vekos-os/voc/internal/vhash"
)

// ErrStorageFailed wraps any durable-append failure. Per §7, a failed
// append must leave in-memory state unchanged; callers must not advance
// a chain or tree until Append returns nil.
type ErrStorageFailed struct {
	Err error
}

func (e *ErrStorageFailed) Error() string { return fmt.Sprintf("storage: append failed: %v", e.Err) }
func (e *ErrStorageFailed) Unwrap() error { return e.Err }

// maxRecordLen bounds a single record read during recovery, guarding
// against a corrupt length field sending Recover on a multi-gigabyte
// read.
const maxRecordLen = 1 << 20

// ProofStorage is the durable back-end contract the verification
// registry journals through. It is intentionally narrow — the registry
// never needs more than append/checkpoint/recover.
//
//go:generate mockgen -destination=storagemock/storagemock.go -package=storagemock github.com/vekos-os/voc/internal/storage ProofStorage
type ProofStorage interface {
	// Append durably writes p, returning only once fsync (or
	// equivalent) has completed.
	Append(p proof.OperationProof) error
	// Checkpoint records the current merkle root and op-id watermark
	// as a known-good audit anchor. It does not change where Recover
	// starts scanning from (replay is always from genesis; see design
	// note §9a).
	Checkpoint(root vhash.H, opWatermark uint64) error
	// Recover replays every intact record from the log in order.
	// Recover truncates (rather than errors) at the first record whose
	// framing or CRC fails to validate, returning the proofs read
	// before that point and truncated=true.
	Recover() (proofs []proof.OperationProof, truncated bool, err error)
	// Checkpointed returns the last checkpoint written, if any.
	Checkpointed() (root vhash.H, opWatermark uint64, ok bool)
	Close() error
}

// FileStorage is the on-disk ProofStorage implementation described by
// §6: a fixed superblock followed by an append-only sequence of framed
// records.
type FileStorage struct {
	mu   sync.Mutex
	log  slog.Logger
	path string
	file *os.File
	sb   superblock
}

// Open opens (creating if necessary) the proof log at path and, if it
// already holds a valid superblock, loads it. Callers must still call
// Recover to rebuild in-memory state from the records.
func Open(path string, log slog.Logger) (*FileStorage, error) {
	if log == nil {
		log = slog.Disabled
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, &ErrStorageFailed{Err: err}
	}

	fs := &FileStorage{log: log, path: path, file: f}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &ErrStorageFailed{Err: err}
	}
	if info.Size() == 0 {
		fs.sb = newSuperblock()
		if err := fs.writeSuperblock(); err != nil {
			f.Close()
			return nil, err
		}
		log.Infof("initialized proof log %s (format %s)", path, FormatVersion)
		return fs, nil
	}

	buf := make([]byte, superblockSize)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, superblockSize), buf); err != nil {
		f.Close()
		return nil, &ErrStorageFailed{Err: fmt.Errorf("read superblock: %w", err)}
	}
	sb, err := decodeSuperblock(buf)
	if err != nil {
		f.Close()
		return nil, &ErrStorageFailed{Err: err}
	}
	if sb.version.Major != FormatVersion.Major {
		f.Close()
		return nil, &ErrStorageFailed{Err: fmt.Errorf("proof log format %s is incompatible with %s", sb.version, FormatVersion)}
	}
	fs.sb = sb
	log.Infof("opened proof log %s at head=%d checkpoint_op=%d", path, sb.headOffset, sb.opWatermark)
	return fs, nil
}

func (s *FileStorage) writeSuperblock() error {
	if _, err := s.file.WriteAt(s.sb.encode(), 0); err != nil {
		return &ErrStorageFailed{Err: err}
	}
	if err := s.file.Sync(); err != nil {
		return &ErrStorageFailed{Err: err}
	}
	return nil
}

// Append durably appends p: it writes a new {len, crc32, bytes} record
// at the current head offset, fsyncs, then advances and fsyncs the
// superblock — in that order, so a crash between the two leaves a
// recoverable tail rather than a superblock pointing past real data.
func (s *FileStorage) Append(p proof.OperationProof) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := p.Marshal()
	if err != nil {
		return &ErrStorageFailed{Err: err}
	}
	frame := make([]byte, 0, 8+len(payload))
	frame = vhash.PutUint32LE(frame, uint32(len(payload)))
	frame = vhash.PutUint32LE(frame, crc32.ChecksumIEEE(payload))
	frame = append(frame, payload...)

	if _, err := s.file.WriteAt(frame, int64(s.sb.headOffset)); err != nil {
		return &ErrStorageFailed{Err: err}
	}
	if err := s.file.Sync(); err != nil {
		return &ErrStorageFailed{Err: err}
	}

	s.sb.headOffset += uint64(len(frame))
	if err := s.writeSuperblock(); err != nil {
		return err
	}
	return nil
}

// Checkpoint records root/opWatermark as the last known-good anchor.
func (s *FileStorage) Checkpoint(root vhash.H, opWatermark uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sb.checkpoint = root
	s.sb.opWatermark = opWatermark
	return s.writeSuperblock()
}

// Checkpointed returns the last recorded checkpoint, if any was taken.
func (s *FileStorage) Checkpointed() (vhash.H, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sb.opWatermark == 0 {
		return vhash.Zero(), 0, false
	}
	return s.sb.checkpoint, s.sb.opWatermark, true
}

// Recover scans every record from just past the superblock to the
// recorded head offset, decoding each and verifying its CRC. The first
// record whose length/CRC fails to validate — a torn write — ends the
// scan; everything read up to that point is returned along with
// truncated=true. Replay always starts from genesis (design note §9a):
// the stored checkpoint is an audit anchor, not a resume point.
func (s *FileStorage) Recover() ([]proof.OperationProof, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := bufio.NewReader(io.NewSectionReader(s.file, superblockSize, int64(s.sb.headOffset)-superblockSize))

	var proofs []proof.OperationProof
	for {
		var lenBuf, crcBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if err == io.EOF {
				return proofs, false, nil
			}
			return proofs, true, nil
		}
		if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
			return proofs, true, nil
		}
		length := binary.LittleEndian.Uint32(lenBuf[:])
		wantCRC := binary.LittleEndian.Uint32(crcBuf[:])
		if length > maxRecordLen {
			return proofs, true, nil
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return proofs, true, nil
		}
		if crc32.ChecksumIEEE(payload) != wantCRC {
			return proofs, true, nil
		}

		p, err := proof.Unmarshal(payload)
		if err != nil {
			return proofs, true, nil
		}
		proofs = append(proofs, p)
	}
}

// Close flushes and closes the underlying file.
func (s *FileStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
