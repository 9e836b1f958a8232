// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config loads vekosctl's configuration the way the teacher's
// cmd/rebuilddb2 loads dcrdata's: a flat struct with jessevdk/go-flags
// tags, parsed from the command line and an optional config file.
//
// The VOC itself, per §6, needs exactly two knobs — capacity_per_chain
// and storage_path — carried here alongside the ambient logging and
// ring-capacity settings a real deployment also needs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultStoragePath       = "vekos-proof.log"
	defaultCapacityPerChain  = 1024
	defaultRingCapacity      = 4096
	defaultLogLevel          = "info"
	defaultConfigFilename    = "vekosctl.conf"
	defaultAppDataSubdirName = "vekosctl"
)

// Config is vekosctl's resolved configuration.
type Config struct {
	StoragePath      string `short:"s" long:"storagepath" description:"path to the proof-storage log file"`
	CapacityPerChain int    `long:"chaincapacity" description:"bounded in-memory tail length per subsystem hash chain"`
	RingCapacity     int    `long:"ringcapacity" description:"per-subsystem deferred-submission ring capacity"`
	DebugLevel       string `short:"d" long:"debuglevel" description:"logging level {trace, debug, info, warn, error, critical}"`
	ConfigFile       string `short:"C" long:"configfile" description:"path to a config file"`
}

// defaultConfig returns a Config with every default applied.
func defaultConfig() Config {
	return Config{
		StoragePath:      defaultStoragePath,
		CapacityPerChain: defaultCapacityPerChain,
		RingCapacity:     defaultRingCapacity,
		DebugLevel:       defaultLogLevel,
	}
}

// Load parses args (typically os.Args[1:]) into a Config, applying
// defaults first, an optional -C config file second, and explicit flags
// last — the same precedence dcrdata-style tools use.
func Load(args []string) (*Config, error) {
	cfg := defaultConfig()

	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		return nil, err
	}
	if preCfg.ConfigFile != "" {
		if err := flags.NewIniParser(flags.NewParser(&cfg, flags.Default)).ParseFile(preCfg.ConfigFile); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: parse %s: %w", preCfg.ConfigFile, err)
			}
		}
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.StoragePath == "" {
		cfg.StoragePath = defaultStoragePath
	}
	if cfg.CapacityPerChain <= 0 {
		cfg.CapacityPerChain = defaultCapacityPerChain
	}
	if cfg.RingCapacity <= 0 {
		cfg.RingCapacity = defaultRingCapacity
	}

	return &cfg, nil
}

// Level parses DebugLevel into an slog.Level, defaulting to LevelInfo on
// an unrecognized value.
func (c *Config) Level() slog.Level {
	lvl, ok := slog.LevelFromString(c.DebugLevel)
	if !ok {
		return slog.LevelInfo
	}
	return lvl
}

// DefaultAppDataDir returns the conventional per-user config directory,
// mirroring the teacher's own default-data-directory convention.
func DefaultAppDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultAppDataSubdirName
	}
	return filepath.Join(home, "."+defaultAppDataSubdirName)
}
