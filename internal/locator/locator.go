// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package locator finds the worker executable on disk.
package locator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matt-FFFFFF/marcopolo/internal/ctxlog"
)

const (
	// DefaultName is the base name of the worker executable.
	DefaultName = "onion"
	// CurrentDir is the directory searched when the supplied one does not contain the worker.
	CurrentDir = "."
	exeSuffix  = ".exe"
)

// Result is a resolved worker executable path, or the not-found sentinel (the zero value).
type Result struct {
	Path string
}

// NotFound is the sentinel returned when no candidate directory contains the worker.
var NotFound = Result{}

// Found reports whether the executable was resolved.
func (r Result) Found() bool {
	return r.Path != ""
}

// String implements fmt.Stringer.
func (r Result) String() string {
	if !r.Found() {
		return "<not found>"
	}

	return r.Path
}

// Candidates returns the ordered directories Locate probes: dir, then the current directory.
// The current directory appears once, so the fallback never runs more than once.
// A dir naming the working directory by another path is probed only under that path.
func Candidates(dir string) []string {
	if dir == "" {
		dir = CurrentDir
	}

	if filepath.Clean(dir) == CurrentDir {
		return []string{CurrentDir}
	}

	if isWorkingDir(dir) {
		return []string{dir}
	}

	return []string{dir, CurrentDir}
}

func isWorkingDir(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}

	wd, err := os.Getwd()
	if err != nil {
		return false
	}

	return abs == filepath.Clean(wd)
}

// Names returns the file names probed in each directory for the base name:
// the bare name, then the name with the Windows executable suffix.
func Names(base string) []string {
	if base == "" {
		base = DefaultName
	}

	return []string{base, base + exeSuffix}
}

// Locate searches dir and then the current directory for a regular file named base or base.exe.
// Absence is not an error: the NotFound sentinel is returned instead.
func Locate(ctx context.Context, dir, base string) Result {
	fs := FsFactory()
	logger := ctxlog.Logger(ctx).With("component", "locator")

	for _, d := range Candidates(dir) {
		for _, name := range Names(base) {
			p := filepath.Join(d, name)

			info, err := fs.Stat(p)
			if err != nil {
				logger.Debug("probe miss", "path", p, "error", err)
				continue
			}

			if !info.Mode().IsRegular() {
				logger.Debug("probe skipped, not a regular file", "path", p, "mode", info.Mode().String())
				continue
			}

			logger.Debug("probe hit", "path", p)

			return Result{Path: p}
		}
	}

	return NotFound
}
