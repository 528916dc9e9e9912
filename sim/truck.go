package sim

import (
	"errors"
	"fmt"
)

// ErrTruckOverload is returned when a truck is asked to carry more than its
// capacity. The dispatcher never retrieves more than a truck holds, so this
// signals a broken invariant rather than a runtime condition.
var ErrTruckOverload = errors.New("truck overload")

// Truck carries at most Capacity products per trip. It is loaded with a
// single Load call per dispatch cycle and is reused across cycles.
// A Truck is owned by the dispatcher goroutine and is not goroutine-safe.
type Truck struct {
	Model    string
	Capacity int

	load  []Product
	trips int
}

// NewTruck creates an empty truck.
func NewTruck(model string, capacity int) *Truck {
	if capacity <= 0 {
		panic(fmt.Sprintf("NewTruck: capacity must be positive, got %d", capacity))
	}
	return &Truck{Model: model, Capacity: capacity}
}

// Load replaces the truck's current load with products.
// Fails with ErrTruckOverload, leaving the previous load untouched, if
// products exceeds the capacity.
func (t *Truck) Load(products []Product) error {
	if len(products) > t.Capacity {
		return fmt.Errorf("%w: %s asked to carry %d, capacity %d", ErrTruckOverload, t.Model, len(products), t.Capacity)
	}
	t.load = append(t.load[:0], products...)
	t.trips++
	return nil
}

// CurrentLoad returns a copy of the products loaded on the last trip.
func (t *Truck) CurrentLoad() []Product {
	out := make([]Product, len(t.load))
	copy(out, t.load)
	return out
}

// Trips returns the number of successful loads.
func (t *Truck) Trips() int {
	return t.trips
}
