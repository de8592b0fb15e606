// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package harness runs one marcopolo test: locate the worker, launch every instance,
// watch them until they are all down or the run is cancelled, then report.
package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matt-FFFFFF/marcopolo/internal/ctxlog"
	"github.com/matt-FFFFFF/marcopolo/internal/instances"
	"github.com/matt-FFFFFF/marcopolo/internal/invocation"
	"github.com/matt-FFFFFF/marcopolo/internal/locator"
	"github.com/matt-FFFFFF/marcopolo/internal/monitor"
	"github.com/matt-FFFFFF/marcopolo/internal/progress"
	"github.com/matt-FFFFFF/marcopolo/internal/supervisor"
)

// ErrExecutableNotFound is returned when neither the build directory nor the
// current directory contains the worker executable.
var ErrExecutableNotFound = errors.New("worker executable not found")

// Config describes a run. The zero value runs the built-in table against ./onion.
type Config struct {
	Dir      string            // Directory searched first for the worker, "." when empty.
	ExeName  string            // Worker base name, locator.DefaultName when empty.
	Table    instances.Table   // Instances to launch, instances.Default() when empty.
	LogDir   string            // Directory for the sink files, the working directory when empty.
	Interval time.Duration     // Poll interval, monitor.DefaultInterval when zero.
	Env      []string          // KEY=VALUE pairs added to the environment inherited by every worker.
	Reporter progress.Reporter // Receives the run's status events.
}

func (c Config) withDefaults() Config {
	if c.Dir == "" {
		c.Dir = locator.CurrentDir
	}

	if c.ExeName == "" {
		c.ExeName = locator.DefaultName
	}

	if c.Table.Len() == 0 {
		c.Table = instances.Default()
	}

	if c.Reporter == nil {
		c.Reporter = progress.NewNullReporter()
	}

	return c
}

// Report is what a finished run looked like.
type Report struct {
	Executable string               // Absolute path of the worker used for every instance.
	Outcome    monitor.Outcome      // Completed or Interrupted.
	Result     monitor.Result       // Poll statistics and observed exits.
	State      *supervisor.RunState // Every launched worker.
}

// Failed returns the number of workers observed to exit with a non-zero code.
func (r Report) Failed() int {
	return r.Result.Failed()
}

// Plan locates the worker and builds the invocation for every instance. Nothing is started.
// When the worker cannot be found an EventNotFound is reported and ErrExecutableNotFound returned.
func Plan(ctx context.Context, cfg Config) ([]invocation.Invocation, error) {
	cfg = cfg.withDefaults()

	loc := locator.Locate(ctx, cfg.Dir, cfg.ExeName)
	if !loc.Found() {
		cfg.Reporter.Report(progress.Event{
			Type:      progress.EventNotFound,
			Timestamp: time.Now(),
			Data:      progress.EventData{Dir: cfg.Dir},
		})

		return nil, fmt.Errorf("%w: %q in %q", ErrExecutableNotFound, cfg.ExeName, cfg.Dir)
	}

	exe, err := filepath.Abs(loc.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", loc.Path, err)
	}

	ctxlog.Debug(ctx, "worker executable resolved", "path", exe)

	return invocation.Build(exe, cfg.Table), nil
}

// Run performs a whole test run. A launch failure is returned as an error and the workers
// already running are left running. Cancelling ctx kills every live worker and Run returns
// with Outcome Interrupted and no error.
func Run(ctx context.Context, cfg Config) (Report, error) {
	cfg = cfg.withDefaults()
	ctx = ctxlog.With(ctx, "exe", cfg.ExeName, "dir", cfg.Dir)
	logger := ctxlog.Logger(ctx).With("component", "harness")

	invs, err := Plan(ctx, cfg)
	if err != nil {
		return Report{}, err
	}

	report := Report{Executable: invs[0].Path()}

	state, err := supervisor.Launch(ctx, invs, supervisor.Options{
		LogDir:   cfg.LogDir,
		Env:      workerEnv(cfg.Env),
		Reporter: cfg.Reporter,
	})
	report.State = state

	defer func() {
		if err := state.Release(); err != nil {
			logger.Warn("could not close every sink", "error", err)
		}
	}()

	switch {
	case errors.Is(err, supervisor.ErrLaunchInterrupted):
		logger.Info("run cancelled during launch", "started", state.Len())
		cfg.Reporter.Report(progress.Event{Type: progress.EventInterrupted, Timestamp: time.Now()})

		report.Result.KillErr = state.KillLive()
		report.Result.Outcome = monitor.Interrupted
		report.Outcome = monitor.Interrupted
		done(cfg.Reporter, report)

		return report, nil

	case err != nil:
		return report, err
	}

	cfg.Reporter.Report(progress.Event{Type: progress.EventRunning, Timestamp: time.Now()})

	report.Result = monitor.Watch(ctx, state, monitor.Options{Interval: cfg.Interval, Reporter: cfg.Reporter})
	report.Outcome = report.Result.Outcome

	logger.Debug("run finished", "outcome", report.Outcome.String(), "iterations", report.Result.Iterations)
	done(cfg.Reporter, report)

	return report, nil
}

// workerEnv returns nil, meaning the inherited environment, unless extra variables are given.
// An extra variable replaces an inherited one of the same name.
func workerEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil
	}

	overridden := make(map[string]struct{}, len(extra))

	for _, kv := range extra {
		k, _, _ := strings.Cut(kv, "=")
		overridden[k] = struct{}{}
	}

	env := slices.DeleteFunc(os.Environ(), func(kv string) bool {
		k, _, _ := strings.Cut(kv, "=")
		_, ok := overridden[k]

		return ok
	})

	return append(env, extra...)
}

func done(r progress.Reporter, report Report) {
	r.Report(progress.Event{
		Type:      progress.EventDone,
		Timestamp: time.Now(),
		Data:      progress.EventData{Failed: report.Failed()},
	})
}
