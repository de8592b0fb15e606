// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package invocation turns the instance table into concrete argument vectors.
package invocation

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/marcopolo/internal/instances"
)

// SinkPattern is the name of the file capturing an instance's output, by ordinal.
const SinkPattern = "log_%d.txt"

// Invocation is the command line for one instance.
type Invocation struct {
	Ordinal int      // 1-based position in the instance table.
	Label   string   // Display name from the table.
	Argv    []string // Executable path followed by the instance arguments.
}

// Path returns the executable, Argv[0].
func (i Invocation) Path() string {
	return i.Argv[0]
}

// Args returns the arguments without the executable.
func (i Invocation) Args() []string {
	return i.Argv[1:]
}

// SinkName returns the sink file name for the invocation's ordinal.
func (i Invocation) SinkName() string {
	return SinkName(i.Ordinal)
}

// SinkName returns the sink file name for a 1-based ordinal, e.g. log_1.txt.
func SinkName(ordinal int) string {
	return fmt.Sprintf(SinkPattern, ordinal)
}

// SinkPath joins dir and the sink file name for ordinal.
func SinkPath(dir string, ordinal int) string {
	return filepath.Join(dir, SinkName(ordinal))
}

// Build expands every table entry into exe followed by the entry's whitespace separated arguments.
// The result is index aligned with the table.
func Build(exe string, table instances.Table) []Invocation {
	out := make([]Invocation, 0, table.Len())

	for i, e := range table.Entries {
		out = append(out, Invocation{
			Ordinal: i + 1,
			Label:   table.Label(i + 1),
			Argv:    slices.Concat([]string{exe}, strings.Fields(e.Args)),
		})
	}

	return out
}
