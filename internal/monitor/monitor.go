// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package monitor polls a fleet of workers until none is alive or the run is cancelled.
package monitor

import (
	"context"
	"time"

	"github.com/matt-FFFFFF/marcopolo/internal/ctxlog"
	"github.com/matt-FFFFFF/marcopolo/internal/progress"
	"github.com/matt-FFFFFF/marcopolo/internal/supervisor"
)

// DefaultInterval is the pause between two liveness polls.
const DefaultInterval = 250 * time.Millisecond

// Outcome is how a monitored run ended.
type Outcome int

const (
	// Completed means every worker exited on its own.
	Completed Outcome = iota
	// Interrupted means the run was cancelled and the remaining workers were killed.
	Interrupted
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Fleet is the set of workers being watched. *supervisor.RunState implements it.
type Fleet interface {
	// Poll returns the workers observed to have exited since the last call, without blocking.
	Poll() []supervisor.Departure
	// Live returns the number of workers not yet observed to have exited.
	Live() int
	// KillLive hard kills every live worker without waiting.
	KillLive() error
}

var _ Fleet = (*supervisor.RunState)(nil)

// Options configures Watch.
type Options struct {
	Interval time.Duration     // Pause between polls, DefaultInterval when zero.
	Reporter progress.Reporter // Receives exit, all-down and interrupted events.
}

// Result summarises a monitored run.
type Result struct {
	Outcome    Outcome
	Iterations int                    // Number of poll passes made.
	Departures []supervisor.Departure // Every exit observed, in observation order.
	KillErr    error                  // Error from killing the remaining workers on interrupt.
}

// Failed returns the number of observed departures with a non-zero exit code.
func (r Result) Failed() int {
	n := 0

	for _, d := range r.Departures {
		if !d.Exit.Success() {
			n++
		}
	}

	return n
}

// Watch polls fleet until no worker is alive or ctx is done.
// Cancellation is noticed between polls; the live workers are then killed once,
// without waiting for them, and no further poll is made.
// There is no timeout: a worker that never exits keeps the run going until ctx is done.
func Watch(ctx context.Context, fleet Fleet, opts Options) Result {
	logger := ctxlog.Logger(ctx).With("component", "monitor")

	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	if opts.Reporter == nil {
		opts.Reporter = progress.NewNullReporter()
	}

	var res Result

	timer := time.NewTimer(opts.Interval)
	defer timer.Stop()

	for {
		res.Iterations++

		for _, d := range fleet.Poll() {
			logger.Debug("worker exited", "ordinal", d.Ordinal, "exitCode", d.Exit.Code, "status", d.Exit.Status)

			res.Departures = append(res.Departures, d)
			opts.Reporter.Report(progress.Event{
				Type:      progress.EventExited,
				Ordinal:   d.Ordinal,
				Label:     d.Label,
				Timestamp: time.Now(),
				Data:      progress.EventData{ExitCode: d.Exit.Code, Status: d.Exit.Status},
			})
		}

		if fleet.Live() == 0 {
			logger.Debug("all workers down", "iterations", res.Iterations)
			opts.Reporter.Report(progress.Event{Type: progress.EventAllDown, Timestamp: time.Now()})

			res.Outcome = Completed

			return res
		}

		if wait(ctx, timer, opts.Interval) {
			continue
		}

		logger.Info("run cancelled, killing workers", "live", fleet.Live(), "cause", context.Cause(ctx))
		opts.Reporter.Report(progress.Event{Type: progress.EventInterrupted, Timestamp: time.Now()})

		res.KillErr = fleet.KillLive()
		if res.KillErr != nil {
			logger.Error("could not kill every worker", "error", res.KillErr)
		}

		res.Outcome = Interrupted

		return res
	}
}

// wait pauses for interval and reports whether polling should go on.
// A cancellation that happened during the last poll wins over the timer.
func wait(ctx context.Context, timer *time.Timer, interval time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}

	timer.Reset(interval)

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
