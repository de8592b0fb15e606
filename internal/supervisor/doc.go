// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package supervisor launches worker processes and tracks them for the liveness monitor.
//
// Every worker writes stdout and stderr to its own sink file. Each worker has a waiter
// goroutine that blocks in os.Process.Wait and publishes the result into a one slot
// channel, so Poll never blocks. All other state is owned by the single goroutine
// driving the run.
package supervisor
