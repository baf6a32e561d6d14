// Package dedupe tracks ids already accepted within one acquisition cycle.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen ids so each is accepted at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Size returns the number of distinct ids recorded.
	Size() int64

	// IDs returns the recorded ids in first-seen order.
	IDs() []string
}

// inMemoryDeduper is a map-backed set that also remembers insertion order.
// An acquisition runs sequentially, the lock only matters when a Deduper is
// shared across goroutines.
type inMemoryDeduper struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	hint  int
}

// NewInMemoryDeduper creates an empty deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, d.hint)
	d.order = make([]string, 0, d.hint)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	return false
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.order))
}

func (d *inMemoryDeduper) IDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}
