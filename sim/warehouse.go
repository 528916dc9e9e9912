// Implements the Warehouse, the bounded FIFO shared by all factories and the dispatcher.
// Factories add batches concurrently; the dispatcher retrieves up to a truck's capacity at a time.

package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// CapacityUnit is the number of slots contributed by each unit of the
// capacity multiplier.
const CapacityUnit = 50

// ErrCapacityExceeded is returned when adding an item would push the
// warehouse past its capacity.
var ErrCapacityExceeded = errors.New("warehouse capacity exceeded")

// WarehouseStats are lifetime counters of a Warehouse.
type WarehouseStats struct {
	Capacity  int `json:"capacity"`
	Size      int `json:"size"`
	Peak      int `json:"peak"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Retrieved int `json:"retrieved"`
}

// Warehouse is a capacity-bounded FIFO of products.
// All methods are safe for concurrent use. The backing slice never leaves
// the warehouse; callers only see copies.
type Warehouse struct {
	mu       sync.Mutex
	capacity int
	items    []Product
	space    chan struct{} // closed and replaced whenever items are retrieved

	peak      int
	accepted  int
	rejected  int
	retrieved int
}

// NewWarehouse creates an empty warehouse holding multiplier*CapacityUnit products.
func NewWarehouse(multiplier int) (*Warehouse, error) {
	if multiplier <= 0 {
		return nil, fmt.Errorf("%w: capacity multiplier must be positive, got %d", ErrInvalidConfig, multiplier)
	}
	return newWarehouseWithCapacity(multiplier * CapacityUnit), nil
}

func newWarehouseWithCapacity(capacity int) *Warehouse {
	return &Warehouse{
		capacity: capacity,
		items:    make([]Product, 0, capacity),
		space:    make(chan struct{}),
	}
}

// Capacity returns the maximum number of products the warehouse holds.
func (w *Warehouse) Capacity() int {
	return w.capacity
}

// Size returns the number of products currently stored.
func (w *Warehouse) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// IsAtOrAbove reports whether the fill ratio is at least fraction.
func (w *Warehouse) IsAtOrAbove(fraction float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return float64(len(w.items)) >= float64(w.capacity)*fraction
}

// AddBatch enqueues products in order, checking the capacity before each one.
// It stops at the first product that does not fit and returns
// ErrCapacityExceeded; products enqueued before that point stay enqueued.
// The returned count is the number of products accepted.
func (w *Warehouse) AddBatch(products []Product) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := w.enqueueLocked(products)
	if n < len(products) {
		w.rejected += len(products) - n
		return n, fmt.Errorf("%w: accepted %d of %d (size %d, capacity %d)",
			ErrCapacityExceeded, n, len(products), len(w.items), w.capacity)
	}
	return n, nil
}

// AddBatchWait enqueues products in order, waiting for the dispatcher to free
// space whenever the warehouse is full. It returns early with ctx.Err() if ctx
// is done first; products already enqueued stay enqueued.
func (w *Warehouse) AddBatchWait(ctx context.Context, products []Product) (int, error) {
	total := 0
	for {
		w.mu.Lock()
		total += w.enqueueLocked(products[total:])
		space := w.space
		w.mu.Unlock()

		if total == len(products) {
			return total, nil
		}
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-space:
		}
	}
}

// enqueueLocked appends as many products as fit. w.mu must be held.
func (w *Warehouse) enqueueLocked(products []Product) int {
	n := 0
	for _, p := range products {
		if len(w.items) >= w.capacity {
			break
		}
		w.items = append(w.items, p)
		n++
	}
	w.accepted += n
	if len(w.items) > w.peak {
		w.peak = len(w.items)
	}
	return n
}

// RetrieveUpTo removes and returns up to n products from the front of the
// warehouse. It never blocks; if fewer than n products are stored, all of
// them are returned.
func (w *Warehouse) RetrieveUpTo(n int) []Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n <= 0 || len(w.items) == 0 {
		return []Product{}
	}
	if n > len(w.items) {
		n = len(w.items)
	}
	out := make([]Product, n)
	copy(out, w.items[:n])
	// Shift in place so the backing array never grows past capacity.
	remaining := copy(w.items, w.items[n:])
	clear(w.items[remaining:])
	w.items = w.items[:remaining]
	w.retrieved += n

	close(w.space)
	w.space = make(chan struct{})
	return out
}

// Stats returns a consistent snapshot of the warehouse counters.
func (w *Warehouse) Stats() WarehouseStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WarehouseStats{
		Capacity:  w.capacity,
		Size:      len(w.items),
		Peak:      w.peak,
		Accepted:  w.accepted,
		Rejected:  w.rejected,
		Retrieved: w.retrieved,
	}
}
