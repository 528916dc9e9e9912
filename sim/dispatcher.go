// Implements the Dispatcher, which watches the warehouse fill ratio and sends
// every truck out once it crosses the high-water threshold.

package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Cycle is the outcome of one dispatch cycle.
type Cycle struct {
	Index      int
	Deliveries []Delivery
	// Stranded holds products retrieved for a truck that refused them.
	// Always empty unless the cycle failed with ErrTruckOverload.
	Stranded []Product
}

// Items returns the number of products delivered in the cycle.
func (c Cycle) Items() int {
	n := 0
	for _, d := range c.Deliveries {
		n += len(d.Items)
	}
	return n
}

// Dispatcher drains the warehouse into its trucks whenever the fill ratio
// reaches Threshold. Trucks are served in registration order.
type Dispatcher struct {
	store        *Warehouse
	trucks       []*Truck
	threshold    float64
	pollInterval time.Duration

	log      *DeliveryLog
	stranded []Product
	cycles   atomic.Int64
}

// NewDispatcher creates a dispatcher over store and trucks.
// A zero pollInterval makes Run re-check the fill ratio as fast as the
// scheduler allows.
func NewDispatcher(store *Warehouse, trucks []*Truck, threshold float64, pollInterval time.Duration) *Dispatcher {
	if store == nil {
		panic("NewDispatcher: store must not be nil")
	}
	return &Dispatcher{
		store:        store,
		trucks:       trucks,
		threshold:    threshold,
		pollInterval: pollInterval,
		log:          NewDeliveryLog(),
	}
}

// Run polls the warehouse until ctx is done, running a dispatch cycle
// each time the threshold is reached. Cancellation is checked once per poll;
// a cycle in progress always completes.
func (d *Dispatcher) Run(ctx context.Context) error {
	var poll <-chan time.Time
	if d.pollInterval > 0 {
		ticker := time.NewTicker(d.pollInterval)
		defer ticker.Stop()
		poll = ticker.C
	}

	for {
		if ctx.Err() != nil {
			logrus.WithField("cycles", d.cycles.Load()).Debug("dispatcher stopped")
			return nil
		}
		if d.store.IsAtOrAbove(d.threshold) {
			if _, err := d.DispatchCycle(); err != nil {
				return err
			}
			continue
		}
		if poll == nil {
			runtime.Gosched()
			continue
		}
		select {
		case <-ctx.Done():
		case <-poll:
		}
	}
}

// DispatchCycle offers every truck one load, regardless of how full the
// warehouse is once the cycle has started. A truck that gets nothing is
// skipped and the next truck is still served.
func (d *Dispatcher) DispatchCycle() (Cycle, error) {
	cycle := Cycle{Index: int(d.cycles.Add(1))}
	logrus.WithFields(logrus.Fields{
		"cycle": cycle.Index,
		"size":  d.store.Size(),
	}).Infof("warehouse at %.0f%% threshold, dispatching trucks", d.threshold*100)

	for _, truck := range d.trucks {
		load := d.store.RetrieveUpTo(truck.Capacity)
		if len(load) == 0 {
			continue
		}
		if err := truck.Load(load); err != nil {
			cycle.Stranded = load
			d.stranded = append(d.stranded, load...)
			return cycle, fmt.Errorf("dispatch cycle %d: %w", cycle.Index, err)
		}
		delivery := Delivery{Cycle: cycle.Index, Truck: truck.Model, Items: load}
		d.log.Record(delivery)
		cycle.Deliveries = append(cycle.Deliveries, delivery)
		logDelivery(delivery)
	}
	return cycle, nil
}

func logDelivery(d Delivery) {
	entry := logrus.WithFields(logrus.Fields{"cycle": d.Cycle, "truck": d.Truck})
	entry.Infof("%s took %d units", d.Truck, len(d.Items))
	for _, c := range countByName(d.Items) {
		entry.Infof("- %s: %d", c.Name, c.Count)
	}
}

// Cycles returns the number of dispatch cycles started so far.
// Safe to call while Run is active.
func (d *Dispatcher) Cycles() int {
	return int(d.cycles.Load())
}

// Log returns the delivery log. Only read it after Run has returned.
func (d *Dispatcher) Log() *DeliveryLog {
	return d.log
}

// Stranded returns products retrieved for a truck that refused them.
// Only read it after Run has returned.
func (d *Dispatcher) Stranded() []Product {
	return d.stranded
}
