// =============================================================================
// internal/resolver/trace.go - Timing and diagnostics collection
// =============================================================================
package resolver

import (
	"sync"
	"time"
)

// Collector is a passive sink for transport attempts. Every attempt,
// successful or not, lands here in wall-clock order. Concurrent glue
// lookups share one collector, hence the mutex.
type Collector struct {
	mu      sync.Mutex
	start   time.Time
	entries []TraceEntry
}

// NewCollector creates a collector with its clock started
func NewCollector() *Collector {
	return &Collector{start: time.Now()}
}

// Record appends one trace entry
func (c *Collector) Record(entry TraceEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
}

// Entries returns a copy of the collected trace
func (c *Collector) Entries() []TraceEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TraceEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of attempts recorded so far
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Elapsed returns wall-clock time since the collector was created
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.start)
}

// QueryTime sums the per-attempt round-trip times
func (c *Collector) QueryTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total time.Duration
	for _, e := range c.entries {
		total += e.Elapsed
	}
	return total
}
