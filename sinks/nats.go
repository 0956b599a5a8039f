package sinks

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/mireska/sift/internal/codec"
	"github.com/mireska/sift/internal/logger"
	"github.com/mireska/sift/stream"
)

// NATSSink publishes every operator call to a subject as an envelope.
type NATSSink struct {
	logger  zerolog.Logger
	conn    *nats.Conn
	subject string
}

func NewNATSSink(url, subject string) (*NATSSink, error) {
	conn, err := nats.Connect(url, nats.Name("sift-sink"))
	if err != nil {
		return nil, fmt.Errorf("nats sink: connect %q: %w", url, err)
	}
	return &NATSSink{
		logger:  logger.GetLogger("nats-sink"),
		conn:    conn,
		subject: subject,
	}, nil
}

func (s *NATSSink) Next(r stream.Record) error {
	return s.publish(codec.Next(r))
}

func (s *NATSSink) Reset(r stream.Record) error {
	return s.publish(codec.Reset(r))
}

func (s *NATSSink) publish(e codec.Envelope) error {
	data, err := codec.Marshal(e)
	if err != nil {
		return err
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		s.logger.Err(err).Msgf("error publishing %s envelope to %s", e.Op, s.subject)
		return fmt.Errorf("nats sink: publish: %w", err)
	}
	return nil
}

// Close flushes buffered publishes and closes the connection.
func (s *NATSSink) Close() error {
	return s.conn.Drain()
}
