// Package interrupt turns SIGINT/SIGTERM into context cancellation.
//
// The first signal cancels the run: running ffmpeg and whisper processes are
// killed through their context and deferred cleanup removes the work
// directory. A second signal while cleanup is still running exits at once.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ExitInterrupt is the exit code for interrupt (130 = 128 + SIGINT).
const ExitInterrupt = 130

const (
	cleanupMessage = "\nInterrupted, cleaning up (press Ctrl+C again to quit now)..."
	abortMessage   = "Aborted."
)

// Handler cancels a context on the first signal and exits on the second.
type Handler struct {
	mu          sync.Mutex
	interrupted bool
	stopped     bool
	cancelFunc  context.CancelFunc
	done        chan struct{} // Signals listen goroutine to exit

	// Injected dependencies (for testing)
	exitFunc func(int)
	stderr   io.Writer
}

// Options holds injectable dependencies for testing.
type Options struct {
	SigCh    <-chan os.Signal
	ExitFunc func(int)
	// Stderr is the writer for user-facing messages.
	// Must be safe for concurrent writes from multiple goroutines.
	Stderr io.Writer
}

// NewHandler creates a handler that listens for SIGINT/SIGTERM.
// Returns the handler and a context that is canceled on first interrupt.
func NewHandler(parent context.Context) (*Handler, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return NewHandlerWithOptions(parent, Options{SigCh: sigCh})
}

// NewHandlerWithOptions creates a handler with injectable dependencies.
// A nil SigCh starts no listener.
func NewHandlerWithOptions(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	h := &Handler{
		cancelFunc: cancel,
		done:       make(chan struct{}),
		exitFunc:   opts.ExitFunc,
		stderr:     opts.Stderr,
	}
	if h.exitFunc == nil {
		h.exitFunc = os.Exit
	}
	if h.stderr == nil {
		h.stderr = os.Stderr
	}

	if opts.SigCh != nil {
		go h.listen(opts.SigCh)
	}
	return h, ctx
}

func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case _, ok := <-sigCh:
			if !ok {
				return
			}

			h.mu.Lock()
			if h.stopped {
				h.mu.Unlock()
				return
			}
			if !h.interrupted {
				h.interrupted = true
				h.cancelFunc()
				h.mu.Unlock()
				_, _ = fmt.Fprintln(h.stderr, cleanupMessage)
				continue
			}
			h.mu.Unlock()

			_, _ = fmt.Fprintln(h.stderr, abortMessage)
			h.exitFunc(ExitInterrupt)
			return // In case exitFunc doesn't actually exit (tests)
		}
	}
}

// WasInterrupted returns true if at least one signal was received.
// Errors returned after an interrupt may not wrap context.Canceled (a killed
// child reports "signal: killed"), so callers check this as well.
func (h *Handler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

// Stop releases the signal handlers and the context. Safe to call repeatedly.
func (h *Handler) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	h.cancelFunc()
	close(h.done)
}
