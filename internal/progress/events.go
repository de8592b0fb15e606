// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a single thing that happened during a run.
type Event struct {
	Type      EventType // What happened.
	Ordinal   int       // 1-based instance ordinal, zero for run-wide events.
	Label     string    // Instance display name, empty for run-wide events.
	Timestamp time.Time // When the event occurred.
	Data      EventData // Type-specific data.
}

// EventType represents the type of run event.
type EventType int

const (
	// EventNotFound indicates the worker executable could not be located.
	EventNotFound EventType = iota
	// EventStarted indicates a worker process was spawned.
	EventStarted
	// EventRunning indicates every worker was spawned and monitoring began.
	EventRunning
	// EventExited indicates a worker process was observed to have exited.
	EventExited
	// EventAllDown indicates no worker is alive any more.
	EventAllDown
	// EventInterrupted indicates the run was cancelled and workers are being killed.
	EventInterrupted
	// EventDone is the final event of a run.
	EventDone
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventNotFound:
		return "not-found"
	case EventStarted:
		return "started"
	case EventRunning:
		return "running"
	case EventExited:
		return "exited"
	case EventAllDown:
		return "all-down"
	case EventInterrupted:
		return "interrupted"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// EventData contains type-specific information for run events.
type EventData struct {
	// For EventNotFound
	Dir string // Directory that was searched

	// For EventStarted
	Pid  int    // Process id
	Sink string // Path of the output sink

	// For EventExited
	ExitCode int    // Exit code, -1 when killed by a signal
	Status   string // Human readable exit status, e.g. "exit status 1"

	// For EventDone
	Failed int // Number of workers that exited with a non-zero code
}

// Reporter receives run events. Implementations must not block.
type Reporter interface {
	Report(event Event)
}

// NullReporter is a no-op implementation of Reporter.
type NullReporter struct{}

// Report implements Reporter.Report by doing nothing.
func (NullReporter) Report(Event) {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return NullReporter{}
}
