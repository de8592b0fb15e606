// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Departure is a worker observed to have exited.
type Departure struct {
	Ordinal int
	Label   string
	Exit    Exit
}

// RunState holds every worker of a run and the subset still believed alive.
// The live count is always the number of workers whose exit has not been observed.
type RunState struct {
	workers []*Worker
	alive   []*Worker
}

func (s *RunState) add(w *Worker) {
	s.workers = append(s.workers, w)
	s.alive = append(s.alive, w)
}

// Workers returns every worker of the run in launch order.
func (s *RunState) Workers() []*Worker {
	out := make([]*Worker, len(s.workers))
	copy(out, s.workers)

	return out
}

// Len returns the number of workers launched.
func (s *RunState) Len() int {
	return len(s.workers)
}

// Live returns the number of workers whose exit has not been observed yet.
func (s *RunState) Live() int {
	return len(s.alive)
}

// Poll checks every live worker once, in launch order, without blocking.
// Workers found to have exited are returned and dropped from the live set,
// which is rebuilt as a new slice rather than edited while iterating.
func (s *RunState) Poll() []Departure {
	var departed []Departure

	still := make([]*Worker, 0, len(s.alive))

	for _, w := range s.alive {
		exit, ok := w.Poll()
		if !ok {
			still = append(still, w)
			continue
		}

		departed = append(departed, Departure{Ordinal: w.Ordinal, Label: w.Label, Exit: exit})
	}

	s.alive = still

	return departed
}

// KillLive sends a hard kill to every live worker without waiting for any of them.
// Every worker is attempted; failures are collected.
func (s *RunState) KillLive() error {
	var result *multierror.Error

	for _, w := range s.alive {
		if err := w.Kill(); err != nil {
			result = multierror.Append(result, fmt.Errorf("instance %d: %w", w.Ordinal, err))
		}
	}

	return result.ErrorOrNil()
}

// Release closes every worker's sink. Processes are left alone.
func (s *RunState) Release() error {
	var result *multierror.Error

	for _, w := range s.workers {
		if err := w.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("instance %d sink: %w", w.Ordinal, err))
		}
	}

	return result.ErrorOrNil()
}
