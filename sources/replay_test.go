package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireska/sift/internal/archive"
	"github.com/mireska/sift/internal/codec"
	"github.com/mireska/sift/stream"
)

func recordedArchive(t *testing.T) *archive.Archive {
	t.Helper()
	ar, err := archive.Open(&archive.Config{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, ar.Append(codec.Next(stream.Record{"l4.dport": stream.Int(80)})))
	require.NoError(t, ar.Append(codec.Reset(stream.Record{"eid": stream.Int(0)})))
	require.NoError(t, ar.Append(codec.Next(stream.Record{"l4.dport": stream.Int(443)})))
	return ar
}

func TestReplaySourceReplaysInOrder(t *testing.T) {
	src := NewReplaySource(recordedArchive(t))
	require.Equal(t, "replay", src.Name())

	sink := &capture{}
	require.NoError(t, src.Run(context.Background(), []stream.Operator{sink}))

	require.Len(t, sink.records, 2)
	assert.Equal(t, stream.Record{"l4.dport": stream.Int(80)}, sink.records[0])
	assert.Equal(t, stream.Record{"l4.dport": stream.Int(443)}, sink.records[1])
	require.Len(t, sink.resets, 1)
	assert.Equal(t, stream.Record{"eid": stream.Int(0)}, sink.resets[0])

	require.NoError(t, src.Close())
}

func TestReplaySourceCanceledContext(t *testing.T) {
	src := NewReplaySource(recordedArchive(t))
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &capture{}
	require.NoError(t, src.Run(ctx, []stream.Operator{sink}))
	assert.Empty(t, sink.records)
	assert.Empty(t, sink.resets)
}

func TestReplaySourceCloseOwnsArchive(t *testing.T) {
	ar := recordedArchive(t)
	src := NewReplaySource(ar)
	require.NoError(t, src.Close())

	err := ar.Append(codec.Next(stream.Record{}))
	require.Error(t, err)
}
