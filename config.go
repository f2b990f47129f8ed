package chainz

import "log/slog"

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLog sets the logger for the pipeline and its workers.
var WithLog = func(log *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// NullWriter is a writer that discards all data.
type NullWriter struct{}

func (NullWriter) Write([]byte) (int, error) { return 0, nil }

// NullLogger creates a logger that discards all output.
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(NullWriter{}, nil))
}
