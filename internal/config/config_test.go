// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, defaultStoragePath, cfg.StoragePath)
	require.Equal(t, defaultCapacityPerChain, cfg.CapacityPerChain)
	require.Equal(t, defaultRingCapacity, cfg.RingCapacity)
}

func TestLoadHonorsExplicitFlags(t *testing.T) {
	cfg, err := Load([]string{"--storagepath=/tmp/custom.log", "--chaincapacity=64"})
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.log", cfg.StoragePath)
	require.Equal(t, 64, cfg.CapacityPerChain)
}

func TestLevelFallsBackToInfoOnUnknownValue(t *testing.T) {
	cfg := &Config{DebugLevel: "not-a-level"}
	require.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLevelParsesKnownValue(t *testing.T) {
	cfg := &Config{DebugLevel: "debug"}
	require.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestDefaultAppDataDirIsNonEmpty(t *testing.T) {
	require.NotEmpty(t, DefaultAppDataDir())
}
