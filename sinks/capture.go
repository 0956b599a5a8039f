package sinks

import (
	"github.com/mireska/sift/internal/archive"
	"github.com/mireska/sift/internal/codec"
	"github.com/mireska/sift/stream"
)

// CaptureSink appends every operator call to the archive, preserving
// order and window boundaries so the run can be replayed later.
type CaptureSink struct {
	ar *archive.Archive
}

func NewCaptureSink(ar *archive.Archive) *CaptureSink {
	return &CaptureSink{ar: ar}
}

func (s *CaptureSink) Next(r stream.Record) error {
	return s.ar.Append(codec.Next(r))
}

func (s *CaptureSink) Reset(r stream.Record) error {
	return s.ar.Append(codec.Reset(r))
}
