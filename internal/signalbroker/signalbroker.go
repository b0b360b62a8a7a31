// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker turns OS termination signals into context cancellation.
// The first signal of a kind is only logged, so in-flight conversions can
// finish; a second signal of the same kind cancels the run, which kills the
// worker processes.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New returns a channel that receives the given signals, or the termination
// signals when none are given.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Ignore stops delivery of the termination signals to the process.
// Worker processes share the coordinator's process group, so a terminal
// interrupt reaches them too; they leave the decision to the coordinator.
func Ignore() {
	signal.Ignore(termSignals...)
}
