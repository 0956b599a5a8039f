package sinks

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireska/sift/stream"
)

func TestDumpSinkPrintsRecords(t *testing.T) {
	var buf bytes.Buffer
	s := NewDumpSink(&buf, false)

	require.NoError(t, s.Next(stream.Record{"b": stream.Int(2), "a": stream.Int(1)}))
	require.NoError(t, s.Reset(stream.Record{"eid": stream.Int(0)}))
	require.NoError(t, s.Next(stream.Record{"a": stream.Int(3)}))

	assert.Equal(t, "a=1, b=2\na=3\n", buf.String())
}

func TestDumpSinkShowsResetsWhenAsked(t *testing.T) {
	var buf bytes.Buffer
	s := NewDumpSink(&buf, true)

	require.NoError(t, s.Reset(stream.Record{"eid": stream.Int(4)}))
	assert.Equal(t, "[reset] eid=4\n", buf.String())
}
