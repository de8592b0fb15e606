// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/matt-FFFFFF/marcopolo/internal/color"
)

// TextReporter writes one status line per event.
type TextReporter struct {
	w   io.Writer
	m   sync.Mutex
	err error
}

// NewTextReporter creates a TextReporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// Report implements Reporter.Report. The first write error is kept and later events are dropped.
func (tr *TextReporter) Report(event Event) {
	tr.m.Lock()
	defer tr.m.Unlock()

	if tr.err != nil {
		return
	}

	_, tr.err = fmt.Fprintln(tr.w, Line(event))
}

// Err returns the first write error, if any.
func (tr *TextReporter) Err() error {
	tr.m.Lock()
	defer tr.m.Unlock()

	return tr.err
}

// Line renders the status line for an event.
func Line(e Event) string {
	switch e.Type {
	case EventNotFound:
		return color.Colorize(fmt.Sprintf("worker executable not found in %q. Usage: marcopolo <builddir>", e.Data.Dir), color.FgRed)
	case EventStarted:
		return fmt.Sprintf("started %s, pid %d, output in %s", instance(e), e.Data.Pid, e.Data.Sink)
	case EventRunning:
		return color.Colorize("test running..", color.FgCyan)
	case EventExited:
		c := color.FgGreen
		if e.Data.ExitCode != 0 {
			c = color.FgYellow
		}

		return color.Colorize(fmt.Sprintf("process went down: %s, %s", instance(e), e.Data.Status), c)
	case EventAllDown:
		return color.Colorize("all processes down", color.Bold)
	case EventInterrupted:
		return color.Colorize("interrupted, terminating", color.FgYellow)
	case EventDone:
		if e.Data.Failed > 0 {
			return fmt.Sprintf("done, check the logfiles (%d worker(s) exited non-zero)", e.Data.Failed)
		}

		return "done, check the logfiles"
	default:
		return e.Type.String()
	}
}

func instance(e Event) string {
	if e.Label == "" {
		return fmt.Sprintf("instance %d", e.Ordinal)
	}

	return fmt.Sprintf("instance %d (%s)", e.Ordinal, e.Label)
}

// Recorder keeps every event it receives. It is safe for concurrent use.
type Recorder struct {
	m      sync.Mutex
	events []Event
}

// Report implements Reporter.Report.
func (r *Recorder) Report(event Event) {
	r.m.Lock()
	defer r.m.Unlock()

	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.m.Lock()
	defer r.m.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)

	return out
}

// Types returns the types of the recorded events in arrival order.
func (r *Recorder) Types() []EventType {
	events := r.Events()
	out := make([]EventType, len(events))

	for i, e := range events {
		out[i] = e.Type
	}

	return out
}
