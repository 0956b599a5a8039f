package sinks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog"

	"github.com/mireska/sift/internal/logger"
	"github.com/mireska/sift/stream"
)

// ElasticSink indexes every record as an alert document, tagged with
// the query that produced it and the run it belongs to. Field values
// are indexed in rendered form so they stay searchable regardless of
// variant. Window boundaries are not indexed.
type ElasticSink struct {
	logger zerolog.Logger
	client *elasticsearch.Client
	index  string
	query  string
	runID  string
}

type alertDoc struct {
	Query     string            `json:"query"`
	RunID     string            `json:"run_id"`
	IndexedAt time.Time         `json:"indexed_at"`
	Fields    map[string]string `json:"fields"`
}

// NewElasticClient builds the shared search client the per-query
// sinks publish through.
func NewElasticClient(addresses []string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("elastic sink: client: %w", err)
	}
	return client, nil
}

func NewElasticSink(client *elasticsearch.Client, index, query, runID string) *ElasticSink {
	return &ElasticSink{
		logger: logger.GetLogger("elastic-sink"),
		client: client,
		index:  index,
		query:  query,
		runID:  runID,
	}
}

func (s *ElasticSink) Next(r stream.Record) error {
	doc := alertDoc{
		Query:     s.query,
		RunID:     s.runID,
		IndexedAt: time.Now().UTC(),
		Fields:    renderFields(r),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elastic sink: marshal alert: %w", err)
	}
	res, err := s.client.Index(s.index, bytes.NewReader(data))
	if err != nil {
		s.logger.Err(err).Msgf("error indexing alert for %s", s.query)
		return fmt.Errorf("elastic sink: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elastic sink: index: %s", res.String())
	}
	return nil
}

func (s *ElasticSink) Reset(stream.Record) error {
	return nil
}

func renderFields(r stream.Record) map[string]string {
	out := make(map[string]string, len(r))
	for name, v := range r {
		out[name] = v.String()
	}
	return out
}
