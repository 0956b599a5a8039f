package stream

import "fmt"

// TimeKey is the field Epoch reads record timestamps from.
const TimeKey = "time"

type epochOperator struct {
	width  float64
	outKey string
	next   Operator

	boundary float64
	eid      int64
}

// Epoch assigns records to fixed-width windows keyed off the "time"
// field. Every record is forwarded with the current window's id under
// outKey, and each boundary crossing emits a downstream reset carrying
// the id of the window that just closed. The first record's timestamp
// anchors the first boundary, so windows are aligned to the stream
// rather than to wall-clock time. Idle windows between two records
// still produce their resets, one per skipped boundary.
func Epoch(width float64, outKey string, next Operator) Operator {
	return &epochOperator{width: width, outKey: outKey, next: next}
}

func (o *epochOperator) Next(r Record) error {
	t, err := r.Float(TimeKey)
	if err != nil {
		return fmt.Errorf("epoch: %w", err)
	}
	if o.boundary == 0 {
		o.boundary = t + o.width
	}
	for t >= o.boundary {
		if err := o.next.Reset(Record{o.outKey: Int(o.eid)}); err != nil {
			return err
		}
		o.boundary += o.width
		o.eid++
	}
	return o.next.Next(r.With(o.outKey, Int(o.eid)))
}

// Reset closes the window in progress and rearms for a fresh stream.
// The incoming reset record is replaced by one naming the closing
// window, matching what boundary crossings emit.
func (o *epochOperator) Reset(Record) error {
	err := o.next.Reset(Record{o.outKey: Int(o.eid)})
	o.boundary = 0
	o.eid = 0
	return err
}
