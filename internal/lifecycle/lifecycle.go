// Package lifecycle turns shutdown signals into a cancelled context and gives
// registered handlers a chance to flush state first.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler receives the OS signal that triggered shutdown.
type Handler func(os.Signal)

// HandlerID identifies a registered handler.
type HandlerID int64

var defaultSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

type Watcher struct {
	mu       sync.Mutex
	handlers map[HandlerID]Handler
	order    []HandlerID
	next     HandlerID
	received os.Signal

	notify func(chan<- os.Signal, ...os.Signal)
	stop   func(chan<- os.Signal)
}

func New() *Watcher {
	return newWatcher(signal.Notify, signal.Stop)
}

func newWatcher(notify func(chan<- os.Signal, ...os.Signal), stop func(chan<- os.Signal)) *Watcher {
	return &Watcher{
		handlers: make(map[HandlerID]Handler),
		notify:   notify,
		stop:     stop,
	}
}

// Register adds a handler that runs when a shutdown signal arrives. Handlers
// run in reverse registration order.
func (w *Watcher) Register(handler Handler) HandlerID {
	if handler == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.next++
	w.handlers[w.next] = handler
	w.order = append(w.order, w.next)
	return w.next
}

func (w *Watcher) Unregister(id HandlerID) {
	if id == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.handlers, id)
	for i, existing := range w.order {
		if existing == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Watch returns a context that is cancelled once the handlers have run for
// the first shutdown signal. A second signal gets the default behaviour and
// kills the process. The returned function releases the subscription.
func (w *Watcher) Watch(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	w.notify(signals, defaultSignals...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig := <-signals:
			w.stop(signals)
			w.setReceived(sig)
			w.runHandlers(sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			w.stop(signals)
			cancel()
			<-done
		})
	}
}

// Received returns the signal that triggered shutdown, or nil.
func (w *Watcher) Received() os.Signal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.received
}

func (w *Watcher) setReceived(sig os.Signal) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.received = sig
}

func (w *Watcher) runHandlers(sig os.Signal) {
	w.mu.Lock()
	snapshot := make([]Handler, 0, len(w.order))
	for _, id := range w.order {
		snapshot = append(snapshot, w.handlers[id])
	}
	w.mu.Unlock()

	for i := len(snapshot) - 1; i >= 0; i-- {
		callHandler(snapshot[i], sig)
	}
}

func callHandler(handler Handler, sig os.Signal) {
	defer func() {
		_ = recover() // a failing handler must not stop the others
	}()
	handler(sig)
}

// ExitCode is the conventional shell exit status for a process killed by sig.
func ExitCode(sig os.Signal) int {
	switch sig {
	case os.Interrupt:
		return 130
	case syscall.SIGTERM:
		return 143
	default:
		return 1
	}
}
