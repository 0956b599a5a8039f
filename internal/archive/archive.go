// Package archive is the capture store: an ordered, durable log of
// operator calls backed by badger. A capture sink appends the calls a
// live run produces; a replay source scans them back in order to
// reproduce the run without the original packet feed.
package archive

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/mireska/sift/internal/codec"
	"github.com/mireska/sift/internal/logger"
)

var (
	seqKey    = []byte("_archive_seq")
	entryMark = byte('r')
)

type Config struct {
	Dir string

	// InMemory keeps the log in process memory, for tests and
	// throwaway runs.
	InMemory bool
}

type Archive struct {
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool

	db  *badger.DB
	seq *badger.Sequence
}

// Open opens or creates the archive at c.Dir.
func Open(c *Config) (*Archive, error) {
	opts := badger.DefaultOptions(c.Dir)
	if c.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("archive: open %q: %w", c.Dir, err)
	}
	seq, err := db.GetSequence(seqKey, 128)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: sequence: %w", err)
	}
	newLogger := logger.GetLogger("archive")
	newLogger.Debug().Msgf("opened archive at %q", c.Dir)
	return &Archive{logger: newLogger, db: db, seq: seq}, nil
}

// Append writes one envelope at the end of the log.
func (a *Archive) Append(e codec.Envelope) error {
	data, err := codec.Marshal(e)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return fmt.Errorf("archive: closed")
	}

	n, err := a.seq.Next()
	if err != nil {
		return fmt.Errorf("archive: next sequence: %w", err)
	}
	key := entryKey(n)
	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		a.logger.Err(err).Msgf("err appending entry %d", n)
		return fmt.Errorf("archive: append entry %d: %w", n, err)
	}
	return nil
}

// Scan walks the log in append order, stopping at the first error
// from fn.
func (a *Archive) Scan(fn func(codec.Envelope) error) error {
	return a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{entryMark}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				env, err := codec.Unmarshal(val)
				if err != nil {
					return err
				}
				return fn(env)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Count reports how many envelopes the log holds.
func (a *Archive) Count() (int, error) {
	n := 0
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{entryMark}
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close releases the sequence lease and closes the store. Entries
// appended after a reopen keep the append order.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	if err := a.seq.Release(); err != nil {
		a.db.Close()
		return fmt.Errorf("archive: release sequence: %w", err)
	}
	return a.db.Close()
}

func entryKey(n uint64) []byte {
	key := make([]byte, 9)
	key[0] = entryMark
	binary.BigEndian.PutUint64(key[1:], n)
	return key
}
