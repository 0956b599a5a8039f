package sinks

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireska/sift/stream"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubResponse(status int) *http.Response {
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(`{}`)),
	}
}

func TestElasticSinkIndexesAlertDocs(t *testing.T) {
	var (
		docs  []alertDoc
		paths []string
	)
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://stub:9200"},
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method == http.MethodPost {
				var doc alertDoc
				require.NoError(t, json.NewDecoder(req.Body).Decode(&doc))
				docs = append(docs, doc)
				paths = append(paths, req.URL.Path)
			}
			return stubResponse(http.StatusOK), nil
		}),
	})
	require.NoError(t, err)

	sink := NewElasticSink(client, "sift-alerts", "ddos", "run-1")
	require.NoError(t, sink.Next(stream.Record{
		"eid":  stream.Int(3),
		"srcs": stream.Int(46),
	}))
	require.NoError(t, sink.Reset(stream.Record{"eid": stream.Int(3)}))

	// One document per record, none for window boundaries.
	require.Len(t, docs, 1)
	assert.Equal(t, []string{"/sift-alerts/_doc"}, paths)
	assert.Equal(t, "ddos", docs[0].Query)
	assert.Equal(t, "run-1", docs[0].RunID)
	assert.Equal(t, map[string]string{"eid": "3", "srcs": "46"}, docs[0].Fields)
	assert.WithinDuration(t, time.Now(), docs[0].IndexedAt, time.Minute)
}

func TestElasticSinkSurfacesIndexErrors(t *testing.T) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://stub:9200"},
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method == http.MethodPost {
				return stubResponse(http.StatusBadRequest), nil
			}
			return stubResponse(http.StatusOK), nil
		}),
	})
	require.NoError(t, err)

	sink := NewElasticSink(client, "sift-alerts", "ddos", "run-1")
	err = sink.Next(stream.Record{"eid": stream.Int(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elastic sink")
}
