package chainz

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	ErrNilTopology = errors.New("chainz: nil topology")
	ErrEmptyChain  = errors.New("chainz: empty chain")
	ErrEmptyIn     = errors.New("chainz: empty fan-in")
	ErrNilFn       = errors.New("chainz: element has no worker function")
)

// Topology describes the shape of a pipeline: a single worker, an ordered
// chain of sub-topologies, or a set of parallel sub-topologies fanning into
// a common successor. Values are pure data; nothing runs until Create.
type Topology interface {
	// countOut is the number of terminal branches, i.e. workers that will
	// link directly into the aggregator.
	countOut() int
	validate() error
}

type element struct {
	fn   Fn
	opts Opts
}

type chain struct {
	children []Topology
}

type fanIn struct {
	children []Topology
}

// Element is a topology of a single worker running fn. The options bag is
// handed to fn at start, extended at the head with the worker's successor
// list under the Next tag.
func Element(fn Fn, opts ...Opt) Topology {
	return &element{fn: fn, opts: opts}
}

// Chain is an ordered sequence of topologies, each feeding the next.
func Chain(ts ...Topology) Topology {
	return &chain{children: ts}
}

// In is a set of parallel topologies fanning into a common successor.
func In(ts ...Topology) Topology {
	return &fanIn{children: ts}
}

func (e *element) countOut() int { return 1 }

func (c *chain) countOut() int {
	return c.children[len(c.children)-1].countOut()
}

func (f *fanIn) countOut() int {
	var n int
	for _, c := range f.children {
		n += c.countOut()
	}
	return n
}

func (e *element) validate() error {
	if e.fn == nil {
		return ErrNilFn
	}
	return nil
}

func (c *chain) validate() error {
	if len(c.children) == 0 {
		return ErrEmptyChain
	}
	return validateChildren(c.children)
}

func (f *fanIn) validate() error {
	if len(f.children) == 0 {
		return ErrEmptyIn
	}
	return validateChildren(f.children)
}

func validateChildren(children []Topology) error {
	var errs error
	for i, c := range children {
		if c == nil {
			errs = multierr.Append(errs, fmt.Errorf("child %d: %w", i, ErrNilTopology))
			continue
		}
		if err := c.validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("child %d: %w", i, err))
		}
	}
	return errs
}
