package signalctl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandle_TriggerShutdownIsIdempotent(t *testing.T) {
	h := &Handle{shutdownCh: make(chan struct{}), reloadCh: make(chan struct{})}

	h.TriggerShutdown()
	require.NotPanics(t, h.TriggerShutdown)

	select {
	case <-h.WaitShutdown(context.Background()):
	case <-time.After(time.Second):
		t.Fatal("WaitShutdown did not observe the trigger")
	}
}

func TestHandle_ReloadIsRearmedAfterEachTrigger(t *testing.T) {
	h := &Handle{shutdownCh: make(chan struct{}), reloadCh: make(chan struct{})}

	ctx := context.Background()
	first := h.WaitReload(ctx)

	h.TriggerReload()
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("first WaitReload did not fire")
	}

	second := h.WaitReload(ctx)
	select {
	case <-second:
		t.Fatal("second WaitReload fired before a new trigger")
	default:
	}

	h.TriggerReload()
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("second WaitReload did not fire after its own trigger")
	}
}

func TestHandle_WaitShutdownRespectsContextCancel(t *testing.T) {
	h := &Handle{shutdownCh: make(chan struct{}), reloadCh: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	ch := h.WaitShutdown(ctx)
	cancel()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("WaitShutdown did not observe context cancellation")
	}
}
