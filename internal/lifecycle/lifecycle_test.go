package lifecycle

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signalHarness struct {
	mu      sync.Mutex
	channel chan<- os.Signal
	stops   int
}

func (h *signalHarness) notify(c chan<- os.Signal, _ ...os.Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channel = c
}

func (h *signalHarness) stop(chan<- os.Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
}

func (h *signalHarness) send(sig os.Signal) {
	h.mu.Lock()
	channel := h.channel
	h.mu.Unlock()
	channel <- sig
}

func newHarnessedWatcher() (*Watcher, *signalHarness) {
	harness := &signalHarness{}
	return newWatcher(harness.notify, harness.stop), harness
}

func waitCancelled(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}

func TestHandlersRunInReverseOrderBeforeCancel(t *testing.T) {
	watcher, harness := newHarnessedWatcher()
	var calls []string
	watcher.Register(func(os.Signal) { calls = append(calls, "first") })
	watcher.Register(func(os.Signal) { calls = append(calls, "second") })

	ctx, stop := watcher.Watch(context.Background())
	defer stop()

	harness.send(syscall.SIGINT)
	waitCancelled(t, ctx)

	assert.Equal(t, []string{"second", "first"}, calls)
	assert.Equal(t, syscall.SIGINT, watcher.Received())
}

func TestUnregisterPreventsInvocation(t *testing.T) {
	watcher, harness := newHarnessedWatcher()
	called := false
	id := watcher.Register(func(os.Signal) { called = true })
	watcher.Unregister(id)
	watcher.Unregister(0)

	ctx, stop := watcher.Watch(context.Background())
	defer stop()
	harness.send(syscall.SIGTERM)
	waitCancelled(t, ctx)

	assert.False(t, called)
}

func TestPanicsAreSwallowed(t *testing.T) {
	watcher, harness := newHarnessedWatcher()
	called := false
	watcher.Register(func(os.Signal) { called = true })
	watcher.Register(func(os.Signal) { panic("boom") })

	ctx, stop := watcher.Watch(context.Background())
	defer stop()
	harness.send(os.Interrupt)
	waitCancelled(t, ctx)

	assert.True(t, called)
}

func TestRegisterIgnoresNil(t *testing.T) {
	watcher, _ := newHarnessedWatcher()
	assert.Equal(t, HandlerID(0), watcher.Register(nil))
}

func TestStopWithoutSignal(t *testing.T) {
	watcher, harness := newHarnessedWatcher()
	called := false
	watcher.Register(func(os.Signal) { called = true })

	ctx, stop := watcher.Watch(context.Background())
	stop()
	stop()

	require.Error(t, ctx.Err())
	assert.False(t, called)
	assert.Nil(t, watcher.Received())
	assert.Equal(t, 1, harness.stops)
}

func TestSignalReleasesSubscription(t *testing.T) {
	watcher, harness := newHarnessedWatcher()

	ctx, stop := watcher.Watch(context.Background())
	harness.send(os.Interrupt)
	waitCancelled(t, ctx)
	stop()

	assert.Equal(t, 2, harness.stops)
}

func TestExitCodeMappings(t *testing.T) {
	assert.Equal(t, 130, ExitCode(os.Interrupt))
	assert.Equal(t, 143, ExitCode(syscall.SIGTERM))
	assert.Equal(t, 1, ExitCode(syscall.Signal(0)))
}
