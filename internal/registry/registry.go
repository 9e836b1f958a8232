// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry implements the verification registry (VR, §4.4): the
// process-wide singleton that ingests proofs, links them into their
// subsystem's hash chain, inserts them into the merkle tree, journals
// them durably, and answers latest-state/root/inclusion-proof/replay
// queries.
//
// Locking follows §5 exactly: one mutex guards (chains, tree, index,
// nextOpID); the storage back-end's own mutex is always acquired after
// it (VR → storage) and the registry never calls back into itself while
// holding storage's lock. In this hosted rewrite "irq-safe" is realized
// as a plain sync.Mutex — callers from a simulated interrupt context
// must use SubmitDeferred rather than RegisterProof, exactly as real IRQ
// handlers would be forbidden from taking a blocking kernel lock.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/decred/slog"
	"golang.org/x/sync/errgroup"

	"github.com/vekos-os/voc/internal/chain"
	"github.com/vekos-os/voc/internal/merkle"
	"github.com/vekos-os/voc/internal/metrics"
	"github.com/vekos-os/voc/internal/proof"
	"github.com/vekos-os/voc/internal/storage"
	"github.com/vekos-os/voc/internal/vhash"
)

// DefaultRingCapacity is the default per-subsystem deferred-submission
// ring size (spec scenario S5 uses 4096).
const DefaultRingCapacity = 4096

type indexEntry struct {
	subsystem proof.Subsystem
	leafIndex uint64
}

// Registry is the verification registry (VR).
type Registry struct {
	mu sync.Mutex

	log     slog.Logger
	metrics *metrics.Metrics
	storage storage.ProofStorage

	capacityPerChain int
	nextOpID         uint64
	chains           map[proof.Subsystem]*chain.Chain
	lastNewState     map[proof.Subsystem]vhash.H
	tree             *merkle.Tree
	index            map[uint64]indexEntry

	rings map[proof.Subsystem]*ring
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithLogger attaches a leveled logger; the default is slog.Disabled.
func WithLogger(log slog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// WithMetrics attaches a metrics.Metrics instance; the default discards
// updates.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithRingCapacity overrides the per-subsystem deferred-submission ring
// capacity.
func WithRingCapacity(n int) Option {
	return func(r *Registry) {
		for s := range r.rings {
			r.rings[s] = newRing(s, n)
		}
	}
}

// New constructs a Registry over st with capacityPerChain bounding each
// subsystem's in-memory hash-chain tail (0 uses chain.DefaultCapacity).
func New(st storage.ProofStorage, capacityPerChain int, opts ...Option) *Registry {
	r := &Registry{
		log:              slog.Disabled,
		metrics:          metrics.New(),
		storage:          st,
		capacityPerChain: capacityPerChain,
		nextOpID:         1,
		chains:           make(map[proof.Subsystem]*chain.Chain),
		lastNewState:     make(map[proof.Subsystem]vhash.H),
		tree:             merkle.New(),
		index:            make(map[uint64]indexEntry),
		rings:            make(map[proof.Subsystem]*ring),
	}
	for _, s := range proof.All {
		r.chains[s] = chain.New(capacityPerChain)
		r.rings[s] = newRing(s, DefaultRingCapacity)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterProof validates and ingests p. Preconditions are checked in
// the exact order spec.md §4.4 lists them, each producing a distinct
// error; a failure at any step leaves the registry's in-memory state
// untouched.
func (r *Registry) RegisterProof(p proof.OperationProof) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(p)
}

func (r *Registry) registerLocked(p proof.OperationProof) error {
	if !p.VerifySignature() {
		return ErrInvalidSignature
	}
	if p.OpID != r.nextOpID {
		return &ErrOutOfOrder{Got: p.OpID, Want: r.nextOpID}
	}
	if want := r.lastNewState[p.Subsystem]; want != vhash.Zero() || r.chains[p.Subsystem].Len() > 0 {
		if p.PrevState != want {
			return &ErrStateMismatch{Subsystem: p.Subsystem, Got: p.PrevState, Want: want}
		}
	}

	if err := r.storage.Append(p); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	r.ingestLocked(p)
	r.log.Debugf("registered %s", p)
	return nil
}

// ingestLocked applies an already-durable proof's effects to the
// in-memory chain/tree/index without touching storage. RegisterProof
// uses it after a successful append; Load uses it directly while
// rehydrating from an existing log, since those proofs are already on
// disk.
func (r *Registry) ingestLocked(p proof.OperationProof) {
	c := r.chains[p.Subsystem]
	c.Append(p.OpID, p.Signature)
	leafIndex := r.tree.LeafCount()
	r.tree.Insert(p.Signature)
	r.index[p.OpID] = indexEntry{subsystem: p.Subsystem, leafIndex: leafIndex}
	r.lastNewState[p.Subsystem] = p.NewState
	r.nextOpID++

	r.metrics.RegistrySize.Set(float64(len(r.index)))
	r.metrics.LastOpID.Set(float64(p.OpID))
	r.metrics.ChainLinks.WithLabelValues(p.Subsystem.String()).Set(float64(c.Len()))
}

// LatestState returns the new_state of the last registered proof for
// subsystem, or vhash.Zero() if none has been registered.
func (r *Registry) LatestState(subsystem proof.Subsystem) vhash.H {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastNewState[subsystem]
}

// Root returns the current merkle root.
func (r *Registry) Root() vhash.H {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree.Root()
}

// NextOpID returns the op_id the next RegisterProof call must carry.
func (r *Registry) NextOpID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextOpID
}

// InclusionProof returns a merkle inclusion proof for opID against the
// registry's current root.
func (r *Registry) InclusionProof(opID uint64) (merkle.InclusionProof, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.index[opID]
	if !ok {
		return merkle.InclusionProof{}, ErrNotFound
	}
	return r.tree.Prove(entry.leafIndex)
}

// Checkpoint journals the current merkle root and op-id watermark to
// storage as a known-good audit anchor.
func (r *Registry) Checkpoint() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storage.Checkpoint(r.tree.Root(), r.nextOpID-1)
}

// SubmitDeferred is the IRQ-safe producer entry point: it enqueues p on
// its subsystem's bounded ring without blocking and returns immediately.
// A full ring drops p and counts the drop; it does not return an error,
// since a true interrupt handler has no one to hand one to.
func (r *Registry) SubmitDeferred(p proof.OperationProof) {
	ring := r.rings[p.Subsystem]
	if ring == nil {
		return
	}
	if !ring.tryPush(p) {
		r.metrics.Dropped(p.Subsystem, 1)
		r.log.Warnf("deferred ring overflow: dropped %s op_id=%d", p.Subsystem, p.OpID)
	}
}

// Drain runs one worker goroutine per subsystem ring, each pulling
// proofs off its ring and calling RegisterProof from a schedulable
// context — the kernel worker of §5. Drain blocks until ctx is
// cancelled, mirroring the teacher's ticker-driven rescan loop
// (cmd/rebuilddb2/rebuilddb2.go) that runs until its own quit channel
// closes.
func (r *Registry) Drain(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, ring := range r.rings {
		ring := ring
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case p := <-ring.ch:
					if err := r.RegisterProof(p); err != nil {
						r.log.Errorf("deferred register failed subsystem=%s op_id=%d: %v", p.Subsystem, p.OpID, err)
					}
				}
			}
		})
	}
	return g.Wait()
}

// DroppedCounts returns the number of proofs dropped by ring overflow so
// far, per subsystem, for surfacing as a RingOverflow integrity warning.
func (r *Registry) DroppedCounts() map[proof.Subsystem]uint64 {
	out := make(map[proof.Subsystem]uint64, len(r.rings))
	for s, ring := range r.rings {
		if n := ring.droppedCount(); n > 0 {
			out[s] = n
		}
	}
	return out
}
