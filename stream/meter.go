package stream

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

type meterOperator struct {
	name string
	w    io.Writer
	next Operator

	epochs int64
	count  int64
}

// Meter counts the records that pass through it and writes one
// "epoch,name,count" line per reset, for cheap per-window throughput
// measurements anywhere in a chain.
func Meter(name string, w io.Writer, next Operator) Operator {
	return &meterOperator{name: name, w: w, next: next}
}

func (o *meterOperator) Next(r Record) error {
	o.count++
	return o.next.Next(r)
}

func (o *meterOperator) Reset(r Record) error {
	if _, err := fmt.Fprintf(o.w, "%d,%s,%d\n", o.epochs, o.name, o.count); err != nil {
		return fmt.Errorf("meter %q: %w", o.name, err)
	}
	log.Debug().Msgf("meter %s: epoch %d closed with %d records", o.name, o.epochs, o.count)
	o.epochs++
	o.count = 0
	return o.next.Reset(r)
}
