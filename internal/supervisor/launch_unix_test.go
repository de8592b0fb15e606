// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matt-FFFFFF/marcopolo/internal/invocation"
	"github.com/matt-FFFFFF/marcopolo/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sh(ordinal int, script string) invocation.Invocation {
	return invocation.Invocation{
		Ordinal: ordinal,
		Label:   "sh",
		Argv:    []string{"/bin/sh", "-c", script},
	}
}

// reap waits for every worker's waiter goroutine and releases the sinks.
func reap(t *testing.T, state *RunState) {
	t.Helper()

	for _, w := range state.Workers() {
		select {
		case <-w.Done():
		case <-time.After(10 * time.Second):
			t.Fatalf("instance %d was not reaped", w.Ordinal)
		}
	}

	assert.NoError(t, state.Release())
}

func TestLaunch_UsesGivenEnvironment(t *testing.T) {
	dir := t.TempDir()

	state, err := Launch(context.Background(), []invocation.Invocation{sh(1, `echo "peer=$MARCOPOLO_PEER"`)}, Options{
		LogDir: dir,
		Env:    []string{"MARCOPOLO_PEER=127.0.0.1:10001"},
	})
	require.NoError(t, err)
	reap(t, state)

	out, err := os.ReadFile(filepath.Join(dir, "log_1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "peer=127.0.0.1:10001\n", string(out))
}

func TestLaunch_OneSinkPerInstance(t *testing.T) {
	dir := t.TempDir()
	rec := &progress.Recorder{}

	invs := []invocation.Invocation{
		sh(1, "echo out-1; echo err-1 >&2"),
		sh(2, "echo out-2; exit 3"),
		sh(3, "true"),
	}

	state, err := Launch(context.Background(), invs, Options{LogDir: dir, Reporter: rec})
	require.NoError(t, err)
	reap(t, state)

	require.Equal(t, 3, state.Len())

	seen := map[string]struct{}{}

	for i, w := range state.Workers() {
		assert.Equal(t, i+1, w.Ordinal, "workers are launched in table order")
		assert.Equal(t, filepath.Join(dir, invocation.SinkName(i+1)), w.SinkPath)
		assert.NotZero(t, w.Pid())
		assert.FileExists(t, w.SinkPath)

		_, dup := seen[w.SinkPath]
		assert.False(t, dup, "sinks are never shared")
		seen[w.SinkPath] = struct{}{}
	}

	out1, err := os.ReadFile(filepath.Join(dir, "log_1.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(out1), "out-1")
	assert.Contains(t, string(out1), "err-1", "stderr goes to the same sink")

	out2, err := os.ReadFile(filepath.Join(dir, "log_2.txt"))
	require.NoError(t, err)
	assert.Equal(t, "out-2\n", string(out2))

	out3, err := os.ReadFile(filepath.Join(dir, "log_3.txt"))
	require.NoError(t, err)
	assert.Empty(t, out3)

	departed := state.Poll()
	require.Len(t, departed, 3)
	assert.Equal(t, 0, departed[0].Exit.Code)
	assert.Equal(t, 3, departed[1].Exit.Code)
	assert.Equal(t, "exit status 3", departed[1].Exit.Status)
	assert.Equal(t, 0, state.Live())

	events := rec.Events()
	require.Len(t, events, 3)

	for i, e := range events {
		assert.Equal(t, progress.EventStarted, e.Type)
		assert.Equal(t, i+1, e.Ordinal)
	}
}

func TestLaunch_TruncatesExistingSink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log_1.txt"), []byte("stale output from a previous run\n"), 0o644))

	state, err := Launch(context.Background(), []invocation.Invocation{sh(1, "echo fresh")}, Options{LogDir: dir})
	require.NoError(t, err)
	reap(t, state)

	out, err := os.ReadFile(filepath.Join(dir, "log_1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(out))
}

func TestLaunch_CreatesLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	state, err := Launch(context.Background(), []invocation.Invocation{sh(1, "true")}, Options{LogDir: dir})
	require.NoError(t, err)
	reap(t, state)

	assert.FileExists(t, filepath.Join(dir, "log_1.txt"))
}

func TestLaunch_SpawnFailureIsFatal(t *testing.T) {
	dir := t.TempDir()

	invs := []invocation.Invocation{
		sh(1, "sleep 30"),
		{Ordinal: 2, Argv: []string{filepath.Join(dir, "missing-onion"), "--polo"}},
		sh(3, "true"),
	}

	state, err := Launch(context.Background(), invs, Options{LogDir: dir})
	require.ErrorIs(t, err, ErrCouldNotStartProcess)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.Equal(t, 1, state.Len(), "launch stops at the failing instance")
	assert.Equal(t, 1, state.Live(), "workers already running are left alone")
	assert.NoFileExists(t, filepath.Join(dir, "log_3.txt"))

	require.NoError(t, state.KillLive())
	reap(t, state)
}

func TestLaunch_SinkFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory in the sink's place makes the open fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "log_1.txt"), 0o755))

	state, err := Launch(context.Background(), []invocation.Invocation{sh(1, "true")}, Options{LogDir: dir})
	require.ErrorIs(t, err, ErrCouldNotCreateSink)
	assert.Equal(t, 0, state.Len())
}

func TestLaunch_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := Launch(ctx, []invocation.Invocation{sh(1, "true")}, Options{LogDir: t.TempDir()})
	require.ErrorIs(t, err, ErrLaunchInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, state.Len())
}

func TestKillLive_HardKill(t *testing.T) {
	state, err := Launch(context.Background(), []invocation.Invocation{
		sh(1, "exec sleep 30"),
		sh(2, "true"),
	}, Options{LogDir: t.TempDir()})
	require.NoError(t, err)

	<-state.Workers()[1].Done()
	state.Poll()
	require.Equal(t, 1, state.Live())

	require.NoError(t, state.KillLive())
	reap(t, state)

	departed := state.Poll()
	require.Len(t, departed, 1)
	assert.Equal(t, 1, departed[0].Ordinal)
	assert.Equal(t, -1, departed[0].Exit.Code)
	assert.Equal(t, "signal: killed", departed[0].Exit.Status)

	assert.NoError(t, state.Workers()[0].Kill(), "killing a finished process is not an error")
}
