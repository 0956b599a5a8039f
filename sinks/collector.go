package sinks

import (
	"sync"

	"github.com/mireska/sift/stream"
)

// Collector retains everything it receives, for tests and end-of-run
// summaries.
type Collector struct {
	mu      sync.Mutex
	records []stream.Record
	resets  []stream.Record
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Next(r stream.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
	return nil
}

func (c *Collector) Reset(r stream.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets = append(c.resets, r)
	return nil
}

// Records returns the collected records in delivery order.
func (c *Collector) Records() []stream.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]stream.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Resets returns the collected window boundaries in delivery order.
func (c *Collector) Resets() []stream.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]stream.Record, len(c.resets))
	copy(out, c.resets)
	return out
}

// Counts reports how many records and resets have arrived.
func (c *Collector) Counts() (records, resets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records), len(c.resets)
}
