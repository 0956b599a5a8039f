// Package sinks holds the terminal operators a pipeline can end in:
// local writers for interactive runs and tests, brokers and the
// search index for deployments, and the capture archive for replay.
// Every sink implements stream.Operator.
package sinks

import (
	"fmt"
	"io"

	"github.com/mireska/sift/stream"
)

// DumpSink prints one line per record, with optional markers for
// window boundaries.
type DumpSink struct {
	w          io.Writer
	showResets bool
}

func NewDumpSink(w io.Writer, showResets bool) *DumpSink {
	return &DumpSink{w: w, showResets: showResets}
}

func (s *DumpSink) Next(r stream.Record) error {
	if _, err := fmt.Fprintln(s.w, r.String()); err != nil {
		return fmt.Errorf("dump sink: %w", err)
	}
	return nil
}

func (s *DumpSink) Reset(r stream.Record) error {
	if !s.showResets {
		return nil
	}
	if _, err := fmt.Fprintf(s.w, "[reset] %s\n", r.String()); err != nil {
		return fmt.Errorf("dump sink: %w", err)
	}
	return nil
}
