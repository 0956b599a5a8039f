package sinks

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/mireska/sift/stream"
)

// CSVSink writes records as CSV rows. The column set is fixed by the
// first record, in sorted field order; later records fill the cells
// they have and leave the rest empty. Window boundaries produce no
// output.
type CSVSink struct {
	csv    *csv.Writer
	header bool
	fields []string
}

func NewCSVSink(w io.Writer, header bool) *CSVSink {
	return &CSVSink{csv: csv.NewWriter(w), header: header}
}

func (s *CSVSink) Next(r stream.Record) error {
	if s.fields == nil {
		s.fields = fieldNames(r)
		if s.header {
			if err := s.csv.Write(s.fields); err != nil {
				return fmt.Errorf("csv sink: header: %w", err)
			}
		}
	}
	row := make([]string, len(s.fields))
	for i, name := range s.fields {
		if v, ok := r[name]; ok {
			row[i] = v.String()
		}
	}
	if err := s.csv.Write(row); err != nil {
		return fmt.Errorf("csv sink: %w", err)
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return fmt.Errorf("csv sink: %w", err)
	}
	return nil
}

func (s *CSVSink) Reset(stream.Record) error {
	return nil
}

// StrictCSVSink writes the fixed seven-column flow rows some
// downstream consumers expect:
//
//	src_ip,dst_ip,src_l4_port,dst_l4_port,packet_count,byte_count,epoch_id
//
// Every column must be present in the record; a missing or mistyped
// field fails the delivery.
type StrictCSVSink struct {
	csv    *csv.Writer
	eidKey string
}

func NewStrictCSVSink(w io.Writer, eidKey string) *StrictCSVSink {
	if eidKey == "" {
		eidKey = stream.DefaultEidKey
	}
	return &StrictCSVSink{csv: csv.NewWriter(w), eidKey: eidKey}
}

func (s *StrictCSVSink) Next(r stream.Record) error {
	src, ok := r["ipv4.src"]
	if !ok {
		return fmt.Errorf("strict csv sink: %w: %q", stream.ErrMissingField, "ipv4.src")
	}
	dst, ok := r["ipv4.dst"]
	if !ok {
		return fmt.Errorf("strict csv sink: %w: %q", stream.ErrMissingField, "ipv4.dst")
	}
	row := []string{src.String(), dst.String()}
	for _, name := range []string{"l4.sport", "l4.dport", "packet_count", "byte_count", s.eidKey} {
		n, err := r.Int(name)
		if err != nil {
			return fmt.Errorf("strict csv sink: %w", err)
		}
		row = append(row, strconv.FormatInt(n, 10))
	}
	if err := s.csv.Write(row); err != nil {
		return fmt.Errorf("strict csv sink: %w", err)
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return fmt.Errorf("strict csv sink: %w", err)
	}
	return nil
}

func (s *StrictCSVSink) Reset(stream.Record) error {
	return nil
}

func fieldNames(r stream.Record) []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
