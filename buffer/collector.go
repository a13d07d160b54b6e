// Package buffer holds records between merge cycles. Each direction has its
// own Collector; readers append, and the merge engine swaps the accumulated
// slice out under the same lock so no record is seen twice or lost.
package buffer

import (
	"sync"
	"sync/atomic"

	"sniffview/record"
)

// Collector is an append-only record list for one direction. Append may be
// called from the owning reader while Take runs on the merge goroutine.
type Collector struct {
	dir   record.Direction
	limit int

	mu      sync.Mutex
	records []record.Record

	appended atomic.Uint64
	dropped  atomic.Uint64
}

// NewCollector creates a collector for dir. limit caps how many records may
// wait for one merge cycle; 0 disables the cap.
func NewCollector(dir record.Direction, limit int) *Collector {
	if limit < 0 {
		limit = 0
	}
	return &Collector{dir: dir, limit: limit}
}

// Direction reports which stream this collector buffers.
func (c *Collector) Direction() record.Direction {
	return c.dir
}

// Append adds r at the tail. Returns false when the per-cycle cap is reached
// and the record was dropped.
func (c *Collector) Append(r record.Record) bool {
	c.mu.Lock()
	if c.limit > 0 && len(c.records) >= c.limit {
		c.mu.Unlock()
		c.dropped.Add(1)
		return false
	}
	c.records = append(c.records, r)
	c.mu.Unlock()
	c.appended.Add(1)
	return true
}

// Take returns everything appended since the previous Take and leaves the
// collector empty. The returned slice is owned by the caller.
func (c *Collector) Take() []record.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.takeLocked()
}

func (c *Collector) takeLocked() []record.Record {
	out := c.records
	c.records = nil
	return out
}

// Len returns the number of records waiting for the next cycle.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Appended returns the total number of records accepted since creation.
func (c *Collector) Appended() uint64 {
	return c.appended.Load()
}

// Dropped returns the number of records rejected by the per-cycle cap.
func (c *Collector) Dropped() uint64 {
	return c.dropped.Load()
}
