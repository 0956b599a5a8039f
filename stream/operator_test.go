package stream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture is the terminal operator used throughout these tests. It
// records every delivery in order.
type capture struct {
	records []Record
	resets  []Record
}

func (c *capture) Next(r Record) error {
	c.records = append(c.records, r)
	return nil
}

func (c *capture) Reset(r Record) error {
	c.resets = append(c.resets, r)
	return nil
}

// failOp fails every delivery with the configured errors.
type failOp struct {
	nextErr  error
	resetErr error
}

func (f *failOp) Next(Record) error  { return f.nextErr }
func (f *failOp) Reset(Record) error { return f.resetErr }

func TestChainDeliversDepthFirst(t *testing.T) {
	sink := &capture{}
	chain := Filter(FieldEqInt("proto", 6),
		Map(func(r Record) (Record, error) {
			return r.With("seen", Int(1)), nil
		}, sink))

	require.NoError(t, chain.Next(Record{"proto": Int(6), "len": Int(40)}))
	require.NoError(t, chain.Next(Record{"proto": Int(17), "len": Int(8)}))
	require.NoError(t, chain.Reset(Record{"eid": Int(0)}))

	require.Len(t, sink.records, 1)
	assert.Equal(t, Record{"proto": Int(6), "len": Int(40), "seen": Int(1)}, sink.records[0])
	require.Len(t, sink.resets, 1)
	assert.Equal(t, Record{"eid": Int(0)}, sink.resets[0])
}

func TestChainUnwindsFirstError(t *testing.T) {
	boom := errors.New("sink unavailable")
	chain := Map(func(r Record) (Record, error) {
		return r, nil
	}, &failOp{nextErr: boom})

	err := chain.Next(Record{"x": Int(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
