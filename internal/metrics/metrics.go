// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metrics exposes the registry's integrity counters through a
// prometheus.Registerer, the same pattern luxfi-consensus's api/metrics
// package wraps around client_golang (NewRegistry/Registerer).
//
// DroppedProofs is the post-boot visible integrity warning spec.md §5
// calls out: a deferred-submission ring that overflows increments it
// rather than blocking or silently discarding without a trace.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vekos-os/voc/internal/proof"
)

// Metrics holds every prometheus collector the verification registry
// updates.
type Metrics struct {
	DroppedProofs *prometheus.CounterVec
	RegistrySize  prometheus.Gauge
	LastOpID      prometheus.Gauge
	ChainLinks    *prometheus.GaugeVec
}

// New constructs the collectors. Callers register them with a
// prometheus.Registerer of their choosing (cmd/vekosctl uses
// prometheus.DefaultRegisterer; tests use a fresh prometheus.NewRegistry()
// per instance so repeated test runs don't collide on the default global
// registry).
func New() *Metrics {
	return &Metrics{
		DroppedProofs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vekos",
			Subsystem: "voc",
			Name:      "dropped_proofs_total",
			Help:      "Proofs dropped by a deferred-submission ring overflow, by subsystem.",
		}, []string{"subsystem"}),
		RegistrySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vekos",
			Subsystem: "voc",
			Name:      "registry_proofs",
			Help:      "Number of proofs currently indexed by the verification registry.",
		}),
		LastOpID: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vekos",
			Subsystem: "voc",
			Name:      "last_op_id",
			Help:      "The most recently assigned operation id.",
		}),
		ChainLinks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "vekos",
			Subsystem: "voc",
			Name:      "chain_links",
			Help:      "Number of entries held in each subsystem's in-memory hash-chain tail.",
		}, []string{"subsystem"}),
	}
}

// MustRegister registers every collector with reg, panicking on
// collision the way prometheus.MustRegister conventionally does at
// process start.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.DroppedProofs, m.RegistrySize, m.LastOpID, m.ChainLinks)
}

// Dropped increments the dropped-proof counter for subsystem by n.
func (m *Metrics) Dropped(subsystem proof.Subsystem, n int) {
	m.DroppedProofs.WithLabelValues(subsystem.String()).Add(float64(n))
}
