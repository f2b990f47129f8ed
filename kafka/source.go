// Package kafka connects pipelines to Kafka: a Source feeds records into a
// pipeline's entry points, a Sink is a terminal worker body that produces
// every message it receives to a topic.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/birdayz/chainz"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Source consumes topics and pushes each record's decoded value into a
// pipeline. One Source owns one consumer client.
type Source struct {
	client *kgo.Client
	dec    Decoder
	log    *slog.Logger

	group string
}

// SourceOption is a function that configures a Source.
type SourceOption func(*Source)

// WithLog sets the logger for the source.
var WithLog = func(log *slog.Logger) SourceOption {
	return func(s *Source) {
		s.log = log
	}
}

// WithDecoder sets the record value decoder. Default is StringDecoder.
var WithDecoder = func(dec Decoder) SourceOption {
	return func(s *Source) {
		s.dec = dec
	}
}

// WithGroup sets the consumer group name.
var WithGroup = func(group string) SourceOption {
	return func(s *Source) {
		s.group = group
	}
}

// NewSource creates a source consuming the given topics.
func NewSource(brokers []string, topics []string, opts ...SourceOption) (*Source, error) {
	s := &Source{
		dec:   StringDecoder,
		log:   chainz.NullLogger(),
		group: "chainz-source",
	}
	for _, opt := range opts {
		opt(s)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(s.group),
		kgo.ConsumeTopics(topics...),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}
	s.client = client
	return s, nil
}

// Run polls records and feeds them into p until ctx is cancelled or the
// client is closed. Records that fail to decode are logged and skipped.
func (s *Source) Run(ctx context.Context, p *chainz.Pipeline) error {
	for {
		fetches := s.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		var ferr error
		fetches.EachError(func(topic string, partition int32, err error) {
			ferr = multierr.Append(ferr, fmt.Errorf("kafka: fetch %s/%d: %w", topic, partition, err))
		})
		if ferr != nil {
			return ferr
		}
		fetches.EachRecord(func(r *kgo.Record) {
			msg, err := s.dec(r.Value)
			if err != nil {
				s.log.Warn("dropping undecodable record", "topic", r.Topic, "offset", r.Offset, "error", err)
				return
			}
			p.In(msg)
		})
	}
}

// Close closes the underlying client, which unblocks Run.
func (s *Source) Close() {
	s.client.Close()
}

// RunSources runs every source against p and blocks until all of them stop.
// The first error cancels the rest.
func RunSources(ctx context.Context, p *chainz.Pipeline, sources ...*Source) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, s := range sources {
		s := s
		eg.Go(func() error {
			return s.Run(ctx, p)
		})
	}
	return eg.Wait()
}
