package sinks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireska/sift/stream"
)

func TestCollectorRetainsDeliveries(t *testing.T) {
	c := NewCollector()

	require.NoError(t, c.Next(stream.Record{"n": stream.Int(1)}))
	require.NoError(t, c.Next(stream.Record{"n": stream.Int(2)}))
	require.NoError(t, c.Reset(stream.Record{"eid": stream.Int(0)}))

	records, resets := c.Counts()
	assert.Equal(t, 2, records)
	assert.Equal(t, 1, resets)

	got := c.Records()
	require.Len(t, got, 2)
	assert.Equal(t, stream.Int(1), got[0]["n"])
	assert.Equal(t, stream.Int(2), got[1]["n"])
	assert.Equal(t, stream.Record{"eid": stream.Int(0)}, c.Resets()[0])
}

func TestCollectorReturnsCopies(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Next(stream.Record{"n": stream.Int(1)}))

	got := c.Records()
	got[0] = stream.Record{"n": stream.Int(99)}

	assert.Equal(t, stream.Int(1), c.Records()[0]["n"])
}
