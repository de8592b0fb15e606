// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the marcopolo command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/marcopolo"
	"github.com/matt-FFFFFF/marcopolo/internal/ctxlog"
	"github.com/matt-FFFFFF/marcopolo/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:      "marcopolo",
		Usage:     "start a local onion test network and watch it until every node is down",
		ArgsUsage: "[builddir]",
		Description: fmt.Sprintf(`marcopolo locates the onion worker in the build directory (or the current directory),
starts one instance per entry of the instance table with its output captured in log_<n>.txt,
and reports every instance that goes down. Ctrl+C terminates all remaining instances.

Set %s to DEBUG, INFO, WARN or ERROR to control diagnostic logging.`, ctxlog.LogLevelEnvVar()),
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Version:   fmt.Sprintf("%s (commit: %s)", marcopolo.Version, marcopolo.Commit),
		Flags:     runFlags(),
		Action:    actionFunc,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go func() {
		if sig := signalbroker.Watch(ctx, sigCh, cancel); sig != nil {
			ctxlog.Debug(ctx, "received signal", "signal", sig.String())
		}
	}()

	// Exit codes carried by cli.Exit are handled by the cli framework.
	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		cancel()
		os.Exit(1) //nolint:gocritic
	}
}
