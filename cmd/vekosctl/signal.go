// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"
)

// shutdownRequest lets an internal component (e.g. a failed boot stage)
// initiate the same clean-shutdown path an interrupt signal would.
var shutdownRequest = make(chan struct{})

// shutdownSignal is closed once, the first time shutdown is triggered
// through either an interrupt signal or requestShutdown.
var shutdownSignal = make(chan struct{})

var signals = []os.Signal{os.Interrupt}

// withShutdownCancel returns a context cancelled when shutdown is
// triggered, so long-running commands (drain) can select on
// ctx.Done() alongside their own work.
func withShutdownCancel(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		<-shutdownSignal
		cancel()
	}()
	return ctx
}

func requestShutdown() {
	shutdownRequest <- struct{}{}
}

// shutdownListener blocks until SIGINT or requestShutdown fires, then
// closes shutdownSignal so every withShutdownCancel context unwinds.
// Intended to run in its own goroutine for the lifetime of the process.
func shutdownListener() {
	interruptChannel := make(chan os.Signal, 1)
	signal.Notify(interruptChannel, signals...)

	select {
	case sig := <-interruptChannel:
		vlogShell.Infof("received signal (%s), shutting down", sig)
	case <-shutdownRequest:
		vlogShell.Infof("shutdown requested, shutting down")
	}
	close(shutdownSignal)

	for {
		select {
		case <-interruptChannel:
		case <-shutdownRequest:
		}
		vlogShell.Infof("shutdown already in progress")
	}
}
