// Package codec defines the envelope that carries operator calls
// across process boundaries. A pipeline stage publishing to a broker
// wraps each Next and Reset in an envelope; the consuming side decodes
// it and replays the same call, so windowing survives the trip.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/mireska/sift/stream"
)

const (
	OpNext  = "next"
	OpReset = "reset"
)

// Envelope is one serialized operator call.
type Envelope struct {
	Op     string        `json:"op"`
	Record stream.Record `json:"record"`
}

// Next wraps a record delivery.
func Next(r stream.Record) Envelope {
	return Envelope{Op: OpNext, Record: r}
}

// Reset wraps a window boundary.
func Reset(r stream.Record) Envelope {
	return Envelope{Op: OpReset, Record: r}
}

// Marshal encodes the envelope as JSON.
func Marshal(e Envelope) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal %s envelope: %w", e.Op, err)
	}
	return data, nil
}

// Unmarshal decodes and validates one envelope.
func Unmarshal(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("codec: unmarshal envelope: %w", err)
	}
	if e.Op != OpNext && e.Op != OpReset {
		return Envelope{}, fmt.Errorf("codec: unknown envelope op %q", e.Op)
	}
	if e.Record == nil {
		e.Record = stream.Record{}
	}
	return e, nil
}

// Apply replays the envelope's call against op.
func (e Envelope) Apply(op stream.Operator) error {
	switch e.Op {
	case OpNext:
		return op.Next(e.Record)
	case OpReset:
		return op.Reset(e.Record)
	}
	return fmt.Errorf("codec: unknown envelope op %q", e.Op)
}
