package stats

import "sync"

// Collector accumulates records from concurrently running workers.
type Collector struct {
	mu      sync.Mutex
	records []Record
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{records: make([]Record, 0, 1024)}
}

// Append adds a record. Safe for concurrent use.
func (c *Collector) Append(r Record) {
	c.mu.Lock()
	c.records = append(c.records, r)
	c.mu.Unlock()
}

// Len returns the number of records collected so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Drain returns every collected record and leaves the Collector empty.
// Callers must make sure no Append is in progress, normally by waiting for
// all producers first.
func (c *Collector) Drain() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.records
	c.records = nil
	return out
}
