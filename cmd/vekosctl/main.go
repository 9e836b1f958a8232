// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command vekosctl is the host-side shell for the verifiable operation
// chain: it opens (or initializes) a proof-storage log, replays it into
// a verification registry, and exposes the handful of inspection and
// simulation subcommands described in §6 — boot, verify, proof, root.
//
// It plays the same role for VOC that cmd/rebuilddb2 plays for
// dcrdata: a single-purpose operational tool wired to the library
// packages rather than a long-running daemon.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/decred/slog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vekos-os/voc/internal/config"
	"github.com/vekos-os/voc/internal/metrics"
	"github.com/vekos-os/voc/internal/producer"
	"github.com/vekos-os/voc/internal/registry"
	"github.com/vekos-os/voc/internal/storage"
	"github.com/vekos-os/voc/internal/vlog"
)

var (
	loggers      *vlog.Loggers
	vlogShell    slog.Logger
	vlogRegistry slog.Logger
	vlogStorage  slog.Logger
	vlogBoot     slog.Logger
)

func initLoggers(cfg *config.Config) {
	loggers = vlog.New(os.Stdout, cfg.Level())
	vlogShell = loggers.Shell
	vlogRegistry = loggers.Registry
	vlogStorage = loggers.Storage
	vlogBoot = loggers.Boot
}

// env bundles everything a subcommand needs, assembled once in mainCore
// and handed to whichever subcommand was requested.
type env struct {
	cfg     *config.Config
	st      *storage.FileStorage
	reg     *registry.Registry
	metrics *metrics.Metrics
}

func mainCore() error {
	args := os.Args[1:]
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	initLoggers(cfg)

	st, err := storage.Open(cfg.StoragePath, vlogStorage)
	if err != nil {
		return fmt.Errorf("open proof log: %w", err)
	}
	defer st.Close()

	m := metrics.New()
	m.MustRegister(prometheus.DefaultRegisterer)

	reg, err := registry.Load(st, cfg.CapacityPerChain,
		registry.WithLogger(vlogRegistry),
		registry.WithMetrics(m),
		registry.WithRingCapacity(cfg.RingCapacity),
	)
	if err != nil {
		vlogShell.Warnf("rehydration reported a broken chain: %v", err)
	}
	producer.InitGlobal(reg, producer.SystemClock)

	e := &env{cfg: cfg, st: st, reg: reg, metrics: m}

	go shutdownListener()
	ctx := withShutdownCancel(context.Background())

	cmdArgs := nonFlagArgs(args)
	if len(cmdArgs) == 0 {
		return fmt.Errorf("usage: vekosctl [options] <boot|verify|proof <op_id>|root|drain>")
	}

	switch cmdArgs[0] {
	case "boot":
		return cmdBoot(e)
	case "verify":
		return cmdVerify(e)
	case "proof":
		if len(cmdArgs) < 2 {
			return fmt.Errorf("usage: vekosctl proof <op_id>")
		}
		return cmdProof(e, cmdArgs[1])
	case "root":
		return cmdRoot(e)
	case "drain":
		return cmdDrain(ctx, e)
	default:
		return fmt.Errorf("unknown subcommand %q", cmdArgs[0])
	}
}

// nonFlagArgs drops every argument that starts with '-', returning
// whatever's left as the positional subcommand and its arguments. An
// option value given as a separate argument (e.g. "-s path") is not
// recognized as such and stays in the result. This
// is a small hand-rolled pass rather than a second flags.Parser run,
// since go-flags has no notion of trailing positional subcommands.
func nonFlagArgs(args []string) []string {
	var out []string
	for _, a := range args {
		if len(a) > 0 && a[0] == '-' {
			continue
		}
		out = append(out, a)
	}
	return out
}

func main() {
	if err := mainCore(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}
