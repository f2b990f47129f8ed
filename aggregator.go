package chainz

import "log/slog"

// startAggregator spawns the pipeline's tail monitor: a trapping worker that
// is the sole downstream of every terminal worker. It forwards chain messages
// to the caller queue verbatim and turns link events into the pipeline's
// terminal status: it exits normally once n branches have terminated
// normally, or with the first abnormal reason it observes.
func startAggregator(log *slog.Logger, n int, out *mailbox) *Worker {
	w := newWorker(log, true)
	go func() {
		w.terminate(w.aggregate(n, out))
	}()
	return w
}

func (w *Worker) aggregate(n int, out *mailbox) error {
	var k int
	for {
		e, ok := w.recvEnvelope()
		if !ok {
			return w.killedReason()
		}
		switch m := e.(type) {
		case chainMsg:
			out.push(m)
		case exitMsg:
			if m.reason != nil {
				w.log.Debug("branch failed", "from", m.from, "reason", m.reason)
				return m.reason
			}
			k++
			w.log.Debug("branch finished", "from", m.from, "done", k, "total", n)
			if k == n {
				return nil
			}
		}
	}
}

// recvEnvelope blocks for the next envelope; ok is false if the worker was
// killed instead. Unlike Get it surfaces exit notices, which only trapping
// workers receive.
func (w *Worker) recvEnvelope() (envelope, bool) {
	for {
		select {
		case <-w.killed:
			return nil, false
		default:
		}
		if e, ok := w.mbox.tryPop(); ok {
			return e, true
		}
		select {
		case <-w.mbox.notify:
		case <-w.killed:
			return nil, false
		}
	}
}
