package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/mireska/sift/internal/codec"
	"github.com/mireska/sift/internal/logger"
	"github.com/mireska/sift/stream"
)

// KafkaSource consumes envelopes from a topic and replays them into
// the entries. The producing side owns windowing; this source only
// relays calls in partition order, so single-partition topics (or a
// per-window keying scheme) are expected for strict ordering.
type KafkaSource struct {
	logger zerolog.Logger
	client *kgo.Client
	topic  string
}

func NewKafkaSource(brokers []string, topic, group string) (*KafkaSource, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
	}
	if group != "" {
		opts = append(opts, kgo.ConsumerGroup(group))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka source: %w", err)
	}
	return &KafkaSource{
		logger: logger.GetLogger("kafka-source"),
		client: client,
		topic:  topic,
	}, nil
}

func (s *KafkaSource) Name() string {
	return "kafka:" + s.topic
}

func (s *KafkaSource) Run(ctx context.Context, entries []stream.Operator) error {
	for {
		fetches := s.client.PollFetches(ctx)
		if fetches.IsClientClosed() || errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fe := range errs {
				if errors.Is(fe.Err, context.Canceled) {
					return nil
				}
				s.logger.Error().Err(fe.Err).Msgf("fetch error on %s/%d", fe.Topic, fe.Partition)
			}
			return fmt.Errorf("kafka source: fetch: %w", errs[0].Err)
		}

		var applyErr error
		fetches.EachRecord(func(rec *kgo.Record) {
			if applyErr != nil {
				return
			}
			env, err := codec.Unmarshal(rec.Value)
			if err != nil {
				applyErr = err
				return
			}
			applyErr = fanout(env, entries)
		})
		if applyErr != nil {
			return fmt.Errorf("kafka source: %w", applyErr)
		}
	}
}

func (s *KafkaSource) Close() error {
	s.client.Close()
	return nil
}
