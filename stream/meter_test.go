package stream

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeterWritesOneLinePerWindow(t *testing.T) {
	var buf bytes.Buffer
	sink := &capture{}
	op := Meter("tcp_new_cons", &buf, sink)

	for i := 0; i < 3; i++ {
		require.NoError(t, op.Next(Record{"n": Int(int64(i))}))
	}
	require.NoError(t, op.Reset(Record{"eid": Int(0)}))
	require.NoError(t, op.Next(Record{"n": Int(9)}))
	require.NoError(t, op.Reset(Record{"eid": Int(1)}))

	assert.Equal(t, "0,tcp_new_cons,3\n1,tcp_new_cons,1\n", buf.String())

	// Everything still flows downstream.
	assert.Len(t, sink.records, 4)
	assert.Len(t, sink.resets, 2)
}

func TestMeterCountsEmptyWindows(t *testing.T) {
	var buf bytes.Buffer
	op := Meter("idle", &buf, &capture{})

	require.NoError(t, op.Reset(Record{"eid": Int(0)}))
	require.NoError(t, op.Reset(Record{"eid": Int(1)}))

	assert.Equal(t, "0,idle,0\n1,idle,0\n", buf.String())
}
