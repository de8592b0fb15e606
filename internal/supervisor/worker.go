// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"errors"
	"os"
)

// ErrCouldNotKillProcess is returned when a kill request could not be delivered.
var ErrCouldNotKillProcess = errors.New("could not kill process")

// Exit describes how a worker process ended.
type Exit struct {
	Code   int    // Exit code, -1 when the process was killed by a signal or could not be waited on.
	Status string // Human readable status, e.g. "exit status 0" or "signal: killed".
}

// Success reports whether the worker exited with code zero.
func (e Exit) Success() bool {
	return e.Code == 0
}

func exitFrom(state *os.ProcessState, err error) Exit {
	if err != nil {
		return Exit{Code: -1, Status: err.Error()}
	}

	return Exit{Code: state.ExitCode(), Status: state.String()}
}

// Worker is the handle of one spawned instance.
type Worker struct {
	Ordinal  int      // 1-based position in the instance table.
	Label    string   // Display name.
	Argv     []string // Command line the process was started with.
	SinkPath string   // File receiving stdout and stderr.

	process *os.Process
	sink    *os.File
	exitCh  chan Exit
	done    chan struct{}
	exit    *Exit
}

func newWorker(ordinal int, label string, argv []string, sinkPath string, ps *os.Process, sink *os.File) *Worker {
	w := &Worker{
		Ordinal:  ordinal,
		Label:    label,
		Argv:     argv,
		SinkPath: sinkPath,
		process:  ps,
		sink:     sink,
		exitCh:   make(chan Exit, 1),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(w.done)

		state, err := ps.Wait()
		w.exitCh <- exitFrom(state, err)
	}()

	return w
}

// Pid returns the process id, or 0 when there is no process.
func (w *Worker) Pid() int {
	if w.process == nil {
		return 0
	}

	return w.process.Pid
}

// Poll reports the worker's exit without blocking. ok is false while the process is running.
// Once an exit has been observed every later call returns it again.
func (w *Worker) Poll() (exit Exit, ok bool) {
	if w.exit != nil {
		return *w.exit, true
	}

	select {
	case e := <-w.exitCh:
		w.exit = &e
		return e, true
	default:
		return Exit{}, false
	}
}

// Kill sends a hard kill to the process and returns without waiting for it to die.
// A process that has already finished is not an error.
func (w *Worker) Kill() error {
	if w.process == nil {
		return nil
	}

	if err := w.process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.Join(ErrCouldNotKillProcess, err)
	}

	return nil
}

// Done is closed once the waiter goroutine has reaped the process.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Close closes the worker's sink. It is safe to call more than once.
func (w *Worker) Close() error {
	if w.sink == nil {
		return nil
	}

	err := w.sink.Close()
	w.sink = nil

	return err
}
