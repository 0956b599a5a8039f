package sources

import (
	"context"
	"fmt"

	"github.com/mireska/sift/internal/archive"
	"github.com/mireska/sift/internal/codec"
	"github.com/mireska/sift/stream"
)

// ReplaySource re-runs a recorded stream from an archive in append
// order. It takes ownership of the archive and closes it on Close.
type ReplaySource struct {
	ar *archive.Archive
}

func NewReplaySource(ar *archive.Archive) *ReplaySource {
	return &ReplaySource{ar: ar}
}

func (s *ReplaySource) Name() string {
	return "replay"
}

func (s *ReplaySource) Run(ctx context.Context, entries []stream.Operator) error {
	err := s.ar.Scan(func(env codec.Envelope) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fanout(env, entries)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("replay source: %w", err)
	}
	return nil
}

func (s *ReplaySource) Close() error {
	return s.ar.Close()
}
