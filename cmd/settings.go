package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"

	"github.com/mireska/sift/sinks"
	"github.com/mireska/sift/sources"
	"github.com/mireska/sift/stream"
)

func sourceConfig(ko *koanf.Koanf) *sources.Config {
	return &sources.Config{
		Kind:       ko.String("source"),
		Path:       ko.String("input"),
		Brokers:    ko.Strings("brokers"),
		Topic:      ko.String("topic"),
		Group:      ko.String("group"),
		URL:        ko.String("nats-url"),
		Subject:    ko.String("subject"),
		ArchiveDir: ko.String("archive-dir"),
		EidKey:     ko.String("eid-key"),
	}
}

// sinkSet builds the terminal operator for each query and owns the
// shared resources behind them. File and broker sinks are shared
// across queries; elastic gets one sink per query so alert documents
// carry the query name.
type sinkSet struct {
	factory func(query string) (stream.Operator, error)
	closers []func() error
}

func newSinkSet(ctx context.Context, ko *koanf.Koanf, runID string) (*sinkSet, error) {
	set := &sinkSet{}

	switch kind := ko.String("sink"); kind {
	case "dump", "csv", "strict-csv":
		w, closeOut, err := openOut(ko.String("out"))
		if err != nil {
			return nil, err
		}
		set.closers = append(set.closers, closeOut)
		switch kind {
		case "dump":
			showResets := ko.Bool("show-resets")
			set.factory = func(string) (stream.Operator, error) {
				return sinks.NewDumpSink(w, showResets), nil
			}
		case "csv":
			set.factory = func(string) (stream.Operator, error) {
				return sinks.NewCSVSink(w, true), nil
			}
		case "strict-csv":
			eidKey := ko.String("eid-key")
			set.factory = func(string) (stream.Operator, error) {
				return sinks.NewStrictCSVSink(w, eidKey), nil
			}
		}
	case "kafka":
		sink, err := sinks.NewKafkaSink(ctx, ko.Strings("brokers"), ko.String("topic"))
		if err != nil {
			return nil, err
		}
		set.closers = append(set.closers, func() error { sink.Close(); return nil })
		set.factory = func(string) (stream.Operator, error) { return sink, nil }
	case "nats":
		sink, err := sinks.NewNATSSink(ko.String("nats-url"), ko.String("subject"))
		if err != nil {
			return nil, err
		}
		set.closers = append(set.closers, sink.Close)
		set.factory = func(string) (stream.Operator, error) { return sink, nil }
	case "elastic":
		client, err := sinks.NewElasticClient(ko.Strings("es-addresses"))
		if err != nil {
			return nil, err
		}
		index := ko.String("es-index")
		set.factory = func(query string) (stream.Operator, error) {
			return sinks.NewElasticSink(client, index, query, runID), nil
		}
	default:
		return nil, fmt.Errorf("unknown sink type: %s", kind)
	}

	return set, nil
}

func (s *sinkSet) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Error().Err(err).Msg("closing sink")
		}
	}
}

func openOut(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output %s: %w", path, err)
	}
	return f, f.Close, nil
}
