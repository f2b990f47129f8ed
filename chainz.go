// Package chainz builds and runs process pipelines: DAGs of independently
// running workers, each a goroutine with its own mailbox, communicating by
// asynchronous message passing. A caller describes a topology declaratively
// with Element, Chain and In, hands it to Create, feeds messages through the
// entry points and drains the pipeline's terminal output with Out. Failure
// of any worker collapses the whole pipeline and surfaces its reason.
package chainz

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrChainEnd is returned by Out once every terminal branch has finished
// normally and all of their messages have been drained.
var ErrChainEnd = errors.New("chainz: end of chain")

// Pipeline is a handle to a running pipeline: the entry points to feed and
// the termination token to drain.
type Pipeline struct {
	log     *slog.Logger
	agg     *Worker
	entries []*Worker
	out     *mailbox
}

// Create turns a topology into a running pipeline. The aggregator is spawned
// first, then the graph is built back to front so every worker starts with
// live successors.
//
// A malformed topology (nil, empty Chain or In, element without a function)
// is rejected before anything is spawned. If a worker fails to start during
// construction, Create kills the aggregator with the build error and returns
// it alongside a pipeline with no entry points; Out on that pipeline reports
// the failure, and the link cascade reaps every already-started worker. If
// the aggregator already terminated during construction, the kill has no
// effect and Out reports that earlier result (ErrChainEnd or a worker's
// reason) instead of the build error.
func Create(t Topology, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		log: NullLogger(),
		out: newMailbox(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if t == nil {
		return nil, ErrNilTopology
	}
	if err := t.validate(); err != nil {
		return nil, err
	}

	n := t.countOut()
	p.agg = startAggregator(p.log, n, p.out)
	p.log.Debug("aggregator started", "branches", n, "token", p.agg.ID())

	entries, err := build(p.log, t, []*Worker{p.agg})
	if err != nil {
		err = fmt.Errorf("chainz: build failed: %w", err)
		p.agg.kill(err)
		return p, err
	}
	p.entries = entries
	p.log.Debug("pipeline created", "entries", len(entries))
	return p, nil
}

// Entries returns the entry point handles: the topmost workers of the
// topology. It is empty if construction failed.
func (p *Pipeline) Entries() []*Worker { return p.entries }

// Token returns the aggregator's handle. Its termination is the pipeline's
// termination; the token distinguishes it from unrelated workers.
func (p *Pipeline) Token() *Worker { return p.agg }

// In sends msg to every entry point as a chain message. It never blocks.
func (p *Pipeline) In(msg any) {
	for _, w := range p.entries {
		w.Send(msg)
	}
}

// Out blocks until the pipeline produces something: the next terminal
// payload (nil error), ErrChainEnd once every branch has finished normally,
// or the reason of the first abnormal exit. Call it repeatedly to drain.
// After a terminal result, further calls keep returning that result.
func (p *Pipeline) Out() (any, error) {
	for {
		if e, ok := p.out.tryPop(); ok {
			return e.(chainMsg).payload, nil
		}
		select {
		case <-p.out.notify:
		case <-p.agg.Done():
			// The aggregator forwards everything before terminating; drain
			// what raced ahead of the done signal.
			if e, ok := p.out.tryPop(); ok {
				return e.(chainMsg).payload, nil
			}
			if err := p.agg.Err(); err != nil {
				return nil, err
			}
			return nil, ErrChainEnd
		}
	}
}
