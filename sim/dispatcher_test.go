package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTrucks() []*Truck {
	return []*Truck{
		NewTruck("Small Truck", 100),
		NewTruck("Medium Truck", 150),
		NewTruck("Large Truck", 200),
	}
}

func TestDispatcher_DispatchCycle_ServesTrucksInOrder(t *testing.T) {
	// GIVEN 500 products in the warehouse and trucks of 100/150/200
	w := newWarehouseWithCapacity(1000)
	_, _ = w.AddBatch(testBatch("A", 500))
	d := NewDispatcher(w, testTrucks(), DefaultThreshold, 0)

	// WHEN one cycle runs
	cycle, err := d.DispatchCycle()

	// THEN each truck takes its capacity in registration order
	require.NoError(t, err)
	require.Len(t, cycle.Deliveries, 3)
	assert.Equal(t, "Small Truck", cycle.Deliveries[0].Truck)
	assert.Len(t, cycle.Deliveries[0].Items, 100)
	assert.Equal(t, "Medium Truck", cycle.Deliveries[1].Truck)
	assert.Len(t, cycle.Deliveries[1].Items, 150)
	assert.Equal(t, "Large Truck", cycle.Deliveries[2].Truck)
	assert.Len(t, cycle.Deliveries[2].Items, 200)
	assert.Equal(t, 50, w.Size())
	assert.Equal(t, 450, d.Log().TotalItems())
	assert.Empty(t, cycle.Stranded)
}

func TestDispatcher_DispatchCycle_PartialLoadAndSkipsEmpty(t *testing.T) {
	// GIVEN 120 products: enough for the small truck and part of the medium one
	w := newWarehouseWithCapacity(1000)
	_, _ = w.AddBatch(testBatch("A", 120))
	d := NewDispatcher(w, testTrucks(), DefaultThreshold, 0)

	cycle, err := d.DispatchCycle()

	// THEN the large truck gets nothing and is not logged
	require.NoError(t, err)
	require.Len(t, cycle.Deliveries, 2)
	assert.Len(t, cycle.Deliveries[1].Items, 20)
	assert.Equal(t, 2, d.Log().Len())
	assert.Equal(t, 1, d.Cycles())
}

func TestDispatcher_DispatchCycle_OrderPreservedAcrossTrucks(t *testing.T) {
	w := newWarehouseWithCapacity(1000)
	_, _ = w.AddBatch(testBatch("A", 100))
	_, _ = w.AddBatch(testBatch("B", 10))
	d := NewDispatcher(w, testTrucks(), DefaultThreshold, 0)

	cycle, err := d.DispatchCycle()

	require.NoError(t, err)
	for _, p := range cycle.Deliveries[0].Items {
		assert.Equal(t, "A", p.Name)
	}
	for _, p := range cycle.Deliveries[1].Items {
		assert.Equal(t, "B", p.Name)
	}
}

func TestDispatcher_DeliveriesNeverExceedTruckCapacity(t *testing.T) {
	w := newWarehouseWithCapacity(2000)
	trucks := testTrucks()
	d := NewDispatcher(w, trucks, DefaultThreshold, 0)
	for i := 0; i < 5; i++ {
		_, _ = w.AddBatch(testBatch("A", 333))
		_, err := d.DispatchCycle()
		require.NoError(t, err)
	}

	capacity := map[string]int{}
	for _, tr := range trucks {
		capacity[tr.Model] = tr.Capacity
	}
	for _, del := range d.Log().Entries() {
		assert.LessOrEqual(t, len(del.Items), capacity[del.Truck])
	}
}

func TestDispatcher_Run_BelowThreshold_NoCycle(t *testing.T) {
	// GIVEN a warehouse at 94% fill
	w := newWarehouseWithCapacity(100)
	_, _ = w.AddBatch(testBatch("A", 94))
	d := NewDispatcher(w, testTrucks(), DefaultThreshold, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// WHEN the dispatcher polls until the deadline
	require.NoError(t, d.Run(ctx))

	// THEN no trucks were sent
	assert.Equal(t, 0, d.Cycles())
	assert.Equal(t, 0, d.Log().Len())
	assert.Equal(t, 94, w.Size())
}

func TestDispatcher_Run_TriggersAtThreshold(t *testing.T) {
	// GIVEN a running dispatcher over a warehouse at 94%
	w := newWarehouseWithCapacity(100)
	_, _ = w.AddBatch(testBatch("A", 94))
	d := NewDispatcher(w, testTrucks(), DefaultThreshold, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 0, d.Cycles())

	// WHEN one more product brings it to 95%
	_, _ = w.AddBatch(testBatch("B", 1))

	// THEN a cycle drains it
	require.Eventually(t, func() bool { return w.Size() == 0 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1, d.Cycles())
	assert.Equal(t, 95, d.Log().TotalItems())
}

func TestDispatcher_Run_ZeroPollInterval_Spins(t *testing.T) {
	w := newWarehouseWithCapacity(100)
	_, _ = w.AddBatch(testBatch("A", 100))
	d := NewDispatcher(w, testTrucks(), DefaultThreshold, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, d.Run(ctx))

	assert.Equal(t, 1, d.Cycles())
	assert.Equal(t, 0, w.Size())
}
