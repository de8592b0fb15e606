// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/marcopolo/internal/color"
	"github.com/matt-FFFFFF/marcopolo/internal/ctxlog"
	"github.com/matt-FFFFFF/marcopolo/internal/harness"
	"github.com/matt-FFFFFF/marcopolo/internal/instances"
	"github.com/matt-FFFFFF/marcopolo/internal/locator"
	"github.com/matt-FFFFFF/marcopolo/internal/monitor"
	"github.com/matt-FFFFFF/marcopolo/internal/progress"
	"github.com/urfave/cli/v3"
)

const (
	instancesFlag    = "instances"
	exeNameFlag      = "exe-name"
	logDirFlag       = "log-dir"
	pollIntervalFlag = "poll-interval"
	timeoutFlag      = "timeout"
	dryRunFlag       = "dry-run"
	strictFlag       = "strict"
	envFlag          = "env"
	logJSONFlag      = "log-json"
	noColorFlag      = "no-color"
)

const (
	exitFailure  = 1
	exitNotFound = 4
)

// ErrTooManyArgs is returned when more than one build directory is given.
var ErrTooManyArgs = errors.New("expected at most one build directory")

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      instancesFlag,
			Aliases:   []string{"f"},
			Usage:     "YAML or HCL instance table, local path or go-getter URL (default: built-in four-instance table)",
			Sources:   cli.EnvVars("MARCOPOLO_INSTANCES"),
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  exeNameFlag,
			Usage: "Base name of the worker executable",
			Value: locator.DefaultName,
		},
		&cli.StringFlag{
			Name:      logDirFlag,
			Usage:     "Directory the per-instance log files are written to",
			Value:     locator.CurrentDir,
			TakesFile: true,
		},
		&cli.DurationFlag{
			Name:  pollIntervalFlag,
			Usage: "Delay between two checks of the running instances",
			Value: monitor.DefaultInterval,
		},
		&cli.DurationFlag{
			Name:  timeoutFlag,
			Usage: "Terminate all instances after this long, 0 waits forever",
		},
		&cli.StringSliceFlag{
			Name:    envFlag,
			Aliases: []string{"e"},
			Usage:   "KEY=VALUE added to the environment of every instance, may be repeated",
		},
		&cli.BoolFlag{
			Name:  dryRunFlag,
			Usage: "Print what would be started without starting anything",
		},
		&cli.BoolFlag{
			Name:  strictFlag,
			Usage: "Exit with status 1 when any instance exited non-zero",
		},
		&cli.BoolFlag{
			Name:  logJSONFlag,
			Usage: "Write diagnostic logs to stderr as JSON",
		},
		&cli.BoolFlag{
			Name:  noColorFlag,
			Usage: "Disable coloured status output",
		},
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool(logJSONFlag) {
		ctx = ctxlog.New(ctx, ctxlog.JSONLogger)
	}

	if cmd.Bool(noColorFlag) {
		color.SetEnabled(false)
	}

	if cmd.Args().Len() > 1 {
		return cli.Exit(fmt.Sprintf("%s, got %d", ErrTooManyArgs, cmd.Args().Len()), exitFailure)
	}

	dir := cmd.Args().First()
	if dir == "" {
		dir = locator.CurrentDir
	}

	table, err := instances.Load(ctx, cmd.String(instancesFlag))
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	if timeout := cmd.Duration(timeoutFlag); timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reporter := progress.NewTextReporter(cmd.Writer)
	cfg := harness.Config{
		Dir:      dir,
		ExeName:  cmd.String(exeNameFlag),
		Table:    table,
		LogDir:   cmd.String(logDirFlag),
		Interval: cmd.Duration(pollIntervalFlag),
		Env:      cmd.StringSlice(envFlag),
		Reporter: reporter,
	}

	if cmd.Bool(dryRunFlag) {
		invs, err := harness.Plan(ctx, cfg)
		if err != nil {
			return exitError(err)
		}

		for _, inv := range invs {
			line := inv.Path()
			if args := inv.Args(); len(args) > 0 {
				line += " " + strings.Join(args, " ")
			}

			fmt.Fprintf(cmd.Writer, "%s: %s\n", inv.SinkName(), line) //nolint:errcheck
		}

		return nil
	}

	report, err := harness.Run(ctx, cfg)
	if err != nil {
		return exitError(err)
	}

	if err := reporter.Err(); err != nil {
		ctxlog.Warn(ctx, "could not write status output", "error", err)
	}

	if cmd.Bool(strictFlag) && report.Failed() > 0 {
		return cli.Exit(fmt.Sprintf("%d worker(s) exited non-zero", report.Failed()), exitFailure)
	}

	return nil
}

// exitError maps a harness error to the process exit code.
// The not-found status line has already been printed by the reporter.
func exitError(err error) error {
	if errors.Is(err, harness.ErrExecutableNotFound) {
		return cli.Exit("", exitNotFound)
	}

	return cli.Exit(err.Error(), exitFailure)
}
