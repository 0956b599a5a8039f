package sinks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/mireska/sift/internal/codec"
	"github.com/mireska/sift/internal/logger"
	"github.com/mireska/sift/stream"
)

// KafkaSink publishes every operator call to a topic as an envelope,
// so a consumer on the other side can replay the stream, window
// boundaries included.
type KafkaSink struct {
	logger zerolog.Logger
	ctx    context.Context
	client *kgo.Client
	topic  string
}

func NewKafkaSink(ctx context.Context, brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka sink: %w", err)
	}
	return &KafkaSink{
		logger: logger.GetLogger("kafka-sink"),
		ctx:    ctx,
		client: client,
		topic:  topic,
	}, nil
}

func (s *KafkaSink) Next(r stream.Record) error {
	return s.publish(codec.Next(r))
}

func (s *KafkaSink) Reset(r stream.Record) error {
	return s.publish(codec.Reset(r))
}

func (s *KafkaSink) publish(e codec.Envelope) error {
	data, err := codec.Marshal(e)
	if err != nil {
		return err
	}
	rec := &kgo.Record{Value: data}
	if err := s.client.ProduceSync(s.ctx, rec).FirstErr(); err != nil {
		s.logger.Err(err).Msgf("error producing %s envelope to %s", e.Op, s.topic)
		return fmt.Errorf("kafka sink: produce: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() {
	s.client.Close()
}
