// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatch_FirstSignalCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	got := Watch(ctx, sigCh, cancel)

	assert.Equal(t, os.Interrupt, got)
	require.ErrorIs(t, ctx.Err(), context.Canceled, "context should be cancelled after the first signal")
}

func TestWatch_ClosedChannelDoesNotCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal)
	close(sigCh)

	assert.Nil(t, Watch(ctx, sigCh, cancel))
	assert.NoError(t, ctx.Err())
}

func TestWatch_ReturnsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan os.Signal, 1)

	go func() {
		done <- Watch(ctx, make(chan os.Signal), cancel)
	}()

	cancel()

	select {
	case sig := <-done:
		assert.Nil(t, sig)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after context cancellation")
	}
}
