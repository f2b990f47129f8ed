package kafka

import (
	"fmt"

	"github.com/birdayz/chainz"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Sink returns a worker body that produces every received message to topic
// and then forwards it downstream, so the pipeline's terminal output mirrors
// what was published. Encoding or produce errors abort the worker, which
// fails the pipeline.
//
// The client is owned by the caller.
func Sink(client *kgo.Client, topic string, enc Encoder) chainz.Fn {
	return func(ctx *chainz.Context) error {
		for {
			msg := ctx.Get()
			value, err := enc(msg)
			if err != nil {
				return fmt.Errorf("kafka: encode for %s: %w", topic, err)
			}
			rec := &kgo.Record{Topic: topic, Value: value}
			if err := client.ProduceSync(ctx, rec).FirstErr(); err != nil {
				return fmt.Errorf("kafka: produce to %s: %w", topic, err)
			}
			ctx.Send(msg)
		}
	}
}
