package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mireska/sift/internal/logger"
	"github.com/mireska/sift/stream"
)

// CSVSource reads packet records from a headered CSV file, one record
// per row. The header names the fields; cell variants are inferred
// per value (int, then address, then float), except the time column
// which always parses as float. Empty cells leave the field out of
// the record. End of input delivers one final reset carrying the
// record count under "tuples".
type CSVSource struct {
	logger zerolog.Logger
	path   string
}

// NewCSVSource reads from path, or stdin when path is "-".
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{logger: logger.GetLogger("csv-source"), path: path}
}

func (s *CSVSource) Name() string {
	return "csv:" + s.path
}

func (s *CSVSource) Run(ctx context.Context, entries []stream.Operator) error {
	in, err := s.open()
	if err != nil {
		return err
	}
	defer in.Close()

	reader := csv.NewReader(in)
	header, err := reader.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("csv source: header: %w", err)
	}

	count := int64(0)
	line := 1
	for header != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("csv source: %w", err)
		}
		line++
		rec, err := recordFromRow(header, row)
		if err != nil {
			return fmt.Errorf("csv source: line %d: %w", line, err)
		}
		count++
		for _, entry := range entries {
			if err := entry.Next(rec.Clone()); err != nil {
				return err
			}
		}
	}

	final := stream.Record{"tuples": stream.Int(count)}
	for _, entry := range entries {
		if err := entry.Reset(final.Clone()); err != nil {
			return err
		}
	}
	s.logger.Info().Msgf("fed %d records from %s", count, s.path)
	return nil
}

func (s *CSVSource) Close() error {
	return nil
}

func (s *CSVSource) open() (io.ReadCloser, error) {
	if s.path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("csv source: %w", err)
	}
	return f, nil
}

func recordFromRow(header, row []string) (stream.Record, error) {
	rec := make(stream.Record, len(header))
	for i, name := range header {
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		v, err := parseValue(name, cell)
		if err != nil {
			return nil, err
		}
		rec[name] = v
	}
	return rec, nil
}

func parseValue(name, cell string) (stream.Value, error) {
	if name == stream.TimeKey {
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return stream.Value{}, fmt.Errorf("field %q: %w", name, err)
		}
		return stream.Float(f), nil
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return stream.Int(n), nil
	}
	if v, err := stream.ParseIPv4(cell); err == nil {
		return v, nil
	}
	if v, err := stream.ParseMAC(cell); err == nil {
		return v, nil
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return stream.Float(f), nil
	}
	return stream.Value{}, fmt.Errorf("field %q: cannot parse %q", name, cell)
}
