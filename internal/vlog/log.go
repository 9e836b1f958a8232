// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vlog wires up the VOC's subsystem loggers the way the
// teacher's cmd/rebuilddb2 wires up RPC/PSQL/SKDB loggers: one
// slog.Backend over a shared writer, one tagged slog.Logger per VOC
// component.
package vlog

import (
	"io"
	"os"

	"github.com/decred/slog"
)

// Loggers holds one tagged logger per VOC component, all backed by the
// same slog.Backend.
type Loggers struct {
	Backend  *slog.Backend
	Registry slog.Logger
	Storage  slog.Logger
	Boot     slog.Logger
	Shell    slog.Logger
}

// New builds a Loggers writing to w (os.Stdout if nil) at the given
// level.
func New(w io.Writer, level slog.Level) *Loggers {
	if w == nil {
		w = os.Stdout
	}
	backend := slog.NewBackend(w)
	l := &Loggers{
		Backend:  backend,
		Registry: backend.Logger("VOCR"),
		Storage:  backend.Logger("STOR"),
		Boot:     backend.Logger("BOOT"),
		Shell:    backend.Logger("SHEL"),
	}
	for _, lg := range []slog.Logger{l.Registry, l.Storage, l.Boot, l.Shell} {
		lg.SetLevel(level)
	}
	return l
}
