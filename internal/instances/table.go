// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package instances

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoInstances is returned when a table has no entries.
	ErrNoInstances = errors.New("no instances specified")
	// ErrInvalidTable is returned when a table entry cannot be used.
	ErrInvalidTable = errors.New("invalid instance table")
)

// Entry is one worker instance: an optional display name and the literal argument string.
type Entry struct {
	Name string `yaml:"name"`
	Args string `yaml:"args"`
}

// Table is the ordered set of instances for a run. Position i has ordinal i+1.
type Table struct {
	Entries []Entry
}

// Default returns the built-in four peer table: one polo peer that also plays marco
// against 127.0.0.1:10004, and three polo peers pointing back at the first.
func Default() Table {
	return Table{Entries: []Entry{
		{
			Name: "marcopolo1",
			Args: "--mock-auth --mock-peer 127.0.0.1:10002 --mock-peer 127.0.0.1:10003 --polo --marco 127.0.0.1:10004 -c marcopolo1.conf",
		},
		{
			Name: "marcopolo2",
			Args: "--mock-auth --mock-peer 127.0.0.1:10001 --polo -c marcopolo2.conf",
		},
		{
			Name: "marcopolo3",
			Args: "--mock-auth --mock-peer 127.0.0.1:10001 --polo -c marcopolo3.conf",
		},
		{
			Name: "marcopolo4",
			Args: "--mock-auth --mock-peer 127.0.0.1:10001 --polo -c marcopolo4.conf",
		},
	}}
}

// Len returns the number of instances.
func (t Table) Len() int {
	return len(t.Entries)
}

// Label returns the display name for the 1-based ordinal, falling back to "instance <n>".
func (t Table) Label(ordinal int) string {
	if ordinal >= 1 && ordinal <= len(t.Entries) && t.Entries[ordinal-1].Name != "" {
		return t.Entries[ordinal-1].Name
	}

	return fmt.Sprintf("instance %d", ordinal)
}

// Validate checks the table is usable: at least one entry and no entry without arguments.
func (t Table) Validate() error {
	if len(t.Entries) == 0 {
		return ErrNoInstances
	}

	for i, e := range t.Entries {
		if len(strings.Fields(e.Args)) == 0 {
			return fmt.Errorf("%w: instance %d (%s) has no arguments", ErrInvalidTable, i+1, t.Label(i+1))
		}
	}

	return nil
}
