package chainz

import "log/slog"

// build walks a topology successors-first and returns the handles of the
// workers at this level, which the level above must feed. Chains are
// traversed right to left so that every worker's successor list is a set of
// live handles by the time its starter runs; that ordering is what makes the
// link/start-ack protocol safe.
func build(log *slog.Logger, t Topology, next []*Worker) ([]*Worker, error) {
	switch n := t.(type) {
	case *element:
		w, err := startWorker(log, n.fn, n.opts, next)
		if err != nil {
			return nil, err
		}
		return []*Worker{w}, nil

	case *fanIn:
		var entries []*Worker
		for _, c := range n.children {
			ws, err := build(log, c, next)
			if err != nil {
				return nil, err
			}
			entries = append(entries, ws...)
		}
		return entries, nil

	case *chain:
		cur := next
		for i := len(n.children) - 1; i >= 0; i-- {
			ws, err := build(log, n.children[i], cur)
			if err != nil {
				return nil, err
			}
			cur = ws
		}
		return cur, nil
	}
	return nil, ErrNilTopology
}
