// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker turns an operator interrupt (Ctrl+C, SIGTERM, SIGQUIT) into cancellation
// of the run context. Only the first signal matters: the run is torn down once.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/marcopolo/internal/ctxlog"
)

// Interrupts are the signals subscribed to when New is called without any.
var Interrupts = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT}

// New subscribes a 1-buffered channel to sigs, or to Interrupts when none are given.
// Release the subscription with Stop.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	if len(sigs) == 0 {
		sigs = Interrupts
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sigs...)

	ctxlog.Debug(ctx, "subscribed to signals", "signals", sigs)

	return sigCh
}

// Stop unsubscribes sigCh.
func Stop(sigCh chan os.Signal) {
	signal.Stop(sigCh)
}

// Watch blocks until the first signal arrives on sigCh, calls cancel and returns that signal.
// It returns nil without cancelling when sigCh is closed or ctx is done first.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) os.Signal {
	select {
	case <-ctx.Done():
		return nil

	case sig, ok := <-sigCh:
		if !ok {
			return nil
		}

		ctxlog.Info(ctx, "interrupt received, cancelling run", "signal", sig.String())
		cancel()

		return sig
	}
}
