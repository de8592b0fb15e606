// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/matt-FFFFFF/marcopolo/internal/ctxlog"
	"github.com/matt-FFFFFF/marcopolo/internal/invocation"
	"github.com/matt-FFFFFF/marcopolo/internal/progress"
)

const sinkPerm = 0o644

var (
	// ErrCouldNotCreateSink is returned when an instance's output file could not be created.
	ErrCouldNotCreateSink = errors.New("could not create output sink")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrLaunchInterrupted is returned when the run was cancelled before every instance was started.
	ErrLaunchInterrupted = errors.New("launch interrupted")
)

// Options configures Launch.
type Options struct {
	LogDir   string            // Directory for the sink files, "" means the working directory.
	Env      []string          // Process environment, nil means os.Environ().
	Reporter progress.Reporter // Receives EventStarted per worker, nil means no reporting.
}

// Launch starts every invocation in order, each with its own truncated sink file.
// The first failure aborts the launch: the failing instance's sink is closed and the error
// is returned together with the RunState of the workers already running, which are left alone.
func Launch(ctx context.Context, invs []invocation.Invocation, opts Options) (*RunState, error) {
	logger := ctxlog.Logger(ctx).With("component", "supervisor")

	if opts.Reporter == nil {
		opts.Reporter = progress.NewNullReporter()
	}

	env := opts.Env
	if env == nil {
		env = os.Environ()
	}

	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil { //nolint:mnd
			return &RunState{}, errors.Join(ErrCouldNotCreateSink, err)
		}
	}

	state := &RunState{}

	for _, inv := range invs {
		if err := ctx.Err(); err != nil {
			return state, errors.Join(ErrLaunchInterrupted, err)
		}

		w, err := start(ctx, inv, opts.LogDir, env)
		if err != nil {
			return state, err
		}

		state.add(w)

		logger.Debug("worker started", "ordinal", w.Ordinal, "pid", w.Pid(), "argv", w.Argv, "sink", w.SinkPath)

		opts.Reporter.Report(progress.Event{
			Type:      progress.EventStarted,
			Ordinal:   w.Ordinal,
			Label:     w.Label,
			Timestamp: time.Now(),
			Data:      progress.EventData{Pid: w.Pid(), Sink: w.SinkPath},
		})
	}

	return state, nil
}

func start(ctx context.Context, inv invocation.Invocation, logDir string, env []string) (*Worker, error) {
	sinkPath := invocation.SinkPath(logDir, inv.Ordinal)

	sink, err := os.OpenFile(sinkPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, sinkPerm)
	if err != nil {
		return nil, errors.Join(ErrCouldNotCreateSink, fmt.Errorf("instance %d: %w", inv.Ordinal, err))
	}

	ps, err := os.StartProcess(inv.Path(), inv.Argv, &os.ProcAttr{
		Env:   env,
		Files: []*os.File{os.Stdin, sink, sink},
	})
	if err != nil {
		_ = sink.Close()

		ctxlog.Error(ctx, "worker could not be started", "ordinal", inv.Ordinal, "path", inv.Path(), "error", err)

		return nil, errors.Join(ErrCouldNotStartProcess, fmt.Errorf("instance %d: %w", inv.Ordinal, err))
	}

	return newWorker(inv.Ordinal, inv.Label, inv.Argv, sinkPath, ps, sink), nil
}
