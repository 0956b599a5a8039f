// Package sources holds the producers that drive query pipelines:
// local CSV files for offline runs, brokers for live feeds, and the
// capture archive for replays. A source owns the single goroutine
// that pushes into every entry it is given; entries are fed in order,
// each with its own copy of the record, and the first error stops the
// run.
package sources

import (
	"context"

	"github.com/mireska/sift/internal/codec"
	"github.com/mireska/sift/stream"
)

// Source feeds records and window boundaries into query entries.
type Source interface {
	Name() string

	// Run blocks until the input is exhausted, the context is
	// canceled, or an entry fails.
	Run(ctx context.Context, entries []stream.Operator) error

	Close() error
}

// fanout replays one envelope against every entry, cloning the record
// so entries never share state.
func fanout(env codec.Envelope, entries []stream.Operator) error {
	for _, entry := range entries {
		e := codec.Envelope{Op: env.Op, Record: env.Record.Clone()}
		if err := e.Apply(entry); err != nil {
			return err
		}
	}
	return nil
}
