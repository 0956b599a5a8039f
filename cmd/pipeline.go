package main

import (
	"os"

	"github.com/knadh/koanf/v2"

	"github.com/mireska/sift/internal/archive"
	"github.com/mireska/sift/internal/metrics"
	"github.com/mireska/sift/queries"
	"github.com/mireska/sift/sinks"
	"github.com/mireska/sift/stream"
)

// queryPipeline is one catalog query wired to its sink, with counters
// on both edges.
type queryPipeline struct {
	name    string
	entries []stream.Operator
}

func buildPipelines(ko *koanf.Koanf, m *metrics.Metrics, ar *archive.Archive, set *sinkSet) ([]queryPipeline, error) {
	names := ko.Strings("queries")
	if len(names) == 1 && names[0] == "all" {
		names = queries.Names()
	}

	meter := ko.Bool("meter")
	pipelines := make([]queryPipeline, 0, len(names))
	for _, name := range names {
		sink, err := set.factory(name)
		if err != nil {
			return nil, err
		}
		if ar != nil {
			sink = stream.Split(sinks.NewCaptureSink(ar), sink)
		}
		if meter {
			sink = stream.Meter(name, os.Stdout, sink)
		}

		q, err := queries.Build(name, m.InstrumentOut(name, sink))
		if err != nil {
			return nil, err
		}
		entries := make([]stream.Operator, 0, len(q.Entries))
		for _, entry := range q.Entries {
			entries = append(entries, m.InstrumentIn(name, entry))
		}
		pipelines = append(pipelines, queryPipeline{name: name, entries: entries})
	}
	return pipelines, nil
}

func pipelineNames(pipelines []queryPipeline) []string {
	names := make([]string, 0, len(pipelines))
	for _, p := range pipelines {
		names = append(names, p.name)
	}
	return names
}

// allEntries flattens every pipeline's entry operators into the slice
// a source feeds.
func allEntries(pipelines []queryPipeline) []stream.Operator {
	var entries []stream.Operator
	for _, p := range pipelines {
		entries = append(entries, p.entries...)
	}
	return entries
}
