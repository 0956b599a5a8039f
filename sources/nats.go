package sources

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/mireska/sift/internal/codec"
	"github.com/mireska/sift/internal/logger"
	"github.com/mireska/sift/stream"
)

// NATSSource subscribes to a subject and replays envelopes into the
// entries. Like the Kafka source it relays calls in arrival order and
// leaves windowing to the publisher.
type NATSSource struct {
	logger  zerolog.Logger
	conn    *nats.Conn
	subject string
}

func NewNATSSource(url, subject string) (*NATSSource, error) {
	conn, err := nats.Connect(url, nats.Name("sift-source"))
	if err != nil {
		return nil, fmt.Errorf("nats source: connect %s: %w", url, err)
	}
	return &NATSSource{
		logger:  logger.GetLogger("nats-source"),
		conn:    conn,
		subject: subject,
	}, nil
}

func (s *NATSSource) Name() string {
	return "nats:" + s.subject
}

func (s *NATSSource) Run(ctx context.Context, entries []stream.Operator) error {
	pending := make(chan *nats.Msg, 512)
	sub, err := s.conn.ChanSubscribe(s.subject, pending)
	if err != nil {
		return fmt.Errorf("nats source: subscribe %s: %w", s.subject, err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			s.logger.Error().Err(err).Msgf("unsubscribe %s", s.subject)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-pending:
			env, err := codec.Unmarshal(msg.Data)
			if err != nil {
				return fmt.Errorf("nats source: %w", err)
			}
			if err := fanout(env, entries); err != nil {
				return fmt.Errorf("nats source: %w", err)
			}
		}
	}
}

func (s *NATSSource) Close() error {
	return s.conn.Drain()
}
