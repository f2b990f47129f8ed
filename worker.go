package chainz

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rs/xid"
)

var (
	// ErrDeadSuccessor is returned when a worker cannot start because one of
	// its downstream peers already terminated.
	ErrDeadSuccessor = errors.New("chainz: successor already terminated")

	// ErrKilled is the reason used by Kill when the caller passes nil.
	ErrKilled = errors.New("chainz: killed")
)

// Fn is a worker body. It is handed a Context carrying the options bag and
// runs until it returns: nil is a normal exit, a non-nil error is an abnormal
// exit whose reason propagates through the link graph. A panic inside the
// body is treated as an abnormal exit as well.
type Fn func(*Context) error

// Worker is an opaque handle to a running worker: it addresses the worker's
// mailbox and permits observation of its termination. Handles are immutable
// and safe to share.
type Worker struct {
	id   string
	log  *slog.Logger
	mbox *mailbox

	// trap converts peer terminations into mailbox messages instead of
	// cascading death. Only the aggregator traps.
	trap bool

	killed chan struct{}
	done   chan struct{}

	mu         sync.Mutex
	links      []*Worker
	dead       bool
	killOnce   bool
	killReason error
	reason     error
}

func newWorker(log *slog.Logger, trap bool) *Worker {
	w := &Worker{
		id:     xid.New().String(),
		mbox:   newMailbox(),
		trap:   trap,
		killed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	w.log = log.With("worker", w.id)
	return w
}

// ID returns the worker's unique identifier.
func (w *Worker) ID() string { return w.id }

// Send delivers msg to the worker's mailbox as a chain message. It never
// blocks; sends to a terminated worker are dropped.
func (w *Worker) Send(msg any) {
	w.mbox.push(chainMsg{payload: msg})
}

// Done is closed once the worker has fully terminated.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Err returns the worker's termination reason: nil for a normal exit.
// It is only meaningful once Done is closed.
func (w *Worker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reason
}

// Kill terminates the worker with the given reason, which propagates through
// the link graph like any abnormal exit. A nil reason is replaced by
// ErrKilled. Takes effect at the worker's next suspension point.
func (w *Worker) Kill(reason error) {
	if reason == nil {
		reason = ErrKilled
	}
	w.kill(reason)
}

func (w *Worker) kill(reason error) {
	w.mu.Lock()
	if w.dead || w.killOnce {
		w.mu.Unlock()
		return
	}
	w.killOnce = true
	w.killReason = reason
	w.mu.Unlock()
	close(w.killed)
}

func (w *Worker) killedReason() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.killReason
}

// attach registers peer to be notified when w terminates. It fails if w has
// already terminated, which is how a starter detects a dead successor.
func (w *Worker) attach(peer *Worker) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dead {
		return false
	}
	w.links = append(w.links, peer)
	return true
}

// terminate runs exactly once, on the worker's own goroutine. It records the
// reason, notifies every linked peer, then closes the mailbox and the done
// signal. Peer notification happens on this goroutine so that, per peer, it
// is ordered after every message the worker sent.
func (w *Worker) terminate(reason error) {
	w.mu.Lock()
	if w.dead {
		w.mu.Unlock()
		return
	}
	w.dead = true
	w.reason = reason
	links := w.links
	w.links = nil
	w.mu.Unlock()

	for _, p := range links {
		p.exitSignal(w.id, reason)
	}
	w.mbox.close()
	close(w.done)

	if reason != nil {
		w.log.Debug("worker terminated abnormally", "reason", reason)
	} else {
		w.log.Debug("worker terminated")
	}
}

// exitSignal delivers a linked peer's termination to w. Trapping workers see
// it as a message; everyone else dies with the same reason if it is abnormal
// and ignores it if it is normal.
func (w *Worker) exitSignal(from string, reason error) {
	if w.trap {
		w.mbox.push(exitMsg{from: from, reason: reason})
		return
	}
	if reason != nil {
		w.kill(reason)
	}
}

// startWorker spawns a worker through the start-up handshake: the worker is
// announced only after it has linked to every downstream peer. If any
// successor is already dead the start fails and the worker self-terminates
// normally, so that a sibling's earlier failure aborts construction cleanly.
func startWorker(log *slog.Logger, fn Fn, opts Opts, next []*Worker) (*Worker, error) {
	w := newWorker(log, false)
	ack := make(chan error, 1)
	go w.run(fn, opts, next, ack)
	if err := <-ack; err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Worker) run(fn Fn, opts Opts, next []*Worker, ack chan<- error) {
	for _, p := range next {
		if !p.attach(w) {
			ack <- fmt.Errorf("%w: %s", ErrDeadSuccessor, p.id)
			w.terminate(nil)
			return
		}
		w.attach(p)
	}
	ack <- nil
	w.log.Debug("worker started", "successors", len(next))
	w.runBody(fn, opts.withNext(next))
}

// runBody executes the user function and maps its outcome to a termination
// reason. A kill surfaces inside the body as a panic thrown out of Get; it
// is recovered here and carries the kill reason.
func (w *Worker) runBody(fn Fn, opts Opts) {
	c := newContext(w, opts)
	defer c.cancel()

	var reason error
	func() {
		defer func() {
			if r := recover(); r != nil {
				switch v := r.(type) {
				case workerKilled:
					reason = v.reason
				case error:
					reason = fmt.Errorf("chainz: worker panic: %w", v)
				default:
					reason = fmt.Errorf("chainz: worker panic: %v", v)
				}
			}
		}()
		reason = fn(c)
	}()
	w.terminate(reason)
}

// workerKilled aborts a body blocked in Get when its worker is killed.
type workerKilled struct {
	reason error
}
