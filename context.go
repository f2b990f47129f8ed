package chainz

import (
	"context"
	"log/slog"
)

// Context is handed to every worker body. It embeds a context.Context that
// is cancelled when the worker is killed, so bodies can pass it to blocking
// calls of their own.
type Context struct {
	context.Context
	cancel context.CancelFunc

	worker *Worker
	opts   Opts
}

func newContext(w *Worker, opts Opts) *Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Context{Context: ctx, cancel: cancel, worker: w, opts: opts}
	go func() {
		select {
		case <-w.killed:
			cancel()
		case <-w.done:
		}
	}()
	return c
}

// Opts returns the worker's options bag, with (Next, successors) at the head.
func (c *Context) Opts() Opts { return c.opts }

// Log returns the worker's logger.
func (c *Context) Log() *slog.Logger { return c.worker.log }

// Get blocks until the next chain message arrives and returns its payload.
// Non-chain traffic is not observable here. If the worker is killed while
// waiting, Get does not return; the worker terminates with the kill reason.
func (c *Context) Get() any {
	w := c.worker
	for {
		select {
		case <-w.killed:
			panic(workerKilled{reason: w.killedReason()})
		default:
		}
		if e, ok := w.mbox.tryPop(); ok {
			if m, ok := e.(chainMsg); ok {
				return m.payload
			}
			continue
		}
		select {
		case <-w.mbox.notify:
		case <-w.killed:
			panic(workerKilled{reason: w.killedReason()})
		}
	}
}

// Send forwards msg to every successor, i.e. every handle bound to Next.
func (c *Context) Send(msg any) {
	c.SendTo(Next, msg)
}

// SendTo forwards msg to every worker handle bound to tag in the options
// bag. A value may be a single handle or a slice of handles; anything else
// is silently dropped, which allows routing tags with optional recipients.
// Delivery is asynchronous and unordered across recipients.
func (c *Context) SendTo(tag string, msg any) {
	for _, v := range c.opts.Values(tag) {
		switch h := v.(type) {
		case *Worker:
			h.Send(msg)
		case []*Worker:
			for _, w := range h {
				w.Send(msg)
			}
		}
	}
}
