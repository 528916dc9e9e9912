// Defines the Factory, a producer that pushes one fixed-size batch per tick into the warehouse.

package sim

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Factory produces Rate copies of its Product every tick.
// Name, Product and Rate are read-only after construction; the counters are
// atomic so a report can be taken while the factory runs.
type Factory struct {
	Name    string
	Product Product
	Rate    int

	ticks    atomic.Int64
	produced atomic.Int64
	accepted atomic.Int64
	dropped  atomic.Int64
}

// FactoryStats are the lifetime counters of a Factory.
type FactoryStats struct {
	Name     string `json:"name"`
	Product  string `json:"product"`
	Ticks    int64  `json:"ticks"`
	Produced int64  `json:"produced"`
	Accepted int64  `json:"accepted"`
	Dropped  int64  `json:"dropped"`
}

// NewFactory creates a factory producing rate copies of product per tick.
func NewFactory(name string, product Product, rate int) *Factory {
	if rate <= 0 {
		panic(fmt.Sprintf("NewFactory: rate must be positive, got %d", rate))
	}
	return &Factory{Name: name, Product: product, Rate: rate}
}

// Produce returns a fresh batch of exactly Rate copies of the product.
func (f *Factory) Produce() []Product {
	batch := make([]Product, f.Rate)
	for i := range batch {
		batch[i] = f.Product
	}
	return batch
}

// Run produces one batch per tick until ctx is done.
// Cancellation is observed while waiting for the next tick; a batch that has
// started being pushed is always finished first (except under OverflowBlock,
// where waiting for space is abandoned on cancellation).
// Under OverflowFail a full warehouse ends the loop with ErrCapacityExceeded.
func (f *Factory) Run(ctx context.Context, store *Warehouse, tick time.Duration, policy OverflowPolicy) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	logger := logrus.WithField("factory", f.Name)
	for {
		select {
		case <-ctx.Done():
			logger.Debug("factory stopped")
			return nil
		case <-ticker.C:
		}

		if err := f.step(ctx, store, policy, logger); err != nil {
			return err
		}
	}
}

// step produces and pushes a single batch.
func (f *Factory) step(ctx context.Context, store *Warehouse, policy OverflowPolicy, logger *logrus.Entry) error {
	batch := f.Produce()
	hour := f.ticks.Add(1)
	f.produced.Add(int64(len(batch)))

	var (
		n   int
		err error
	)
	if policy == OverflowBlock {
		n, err = store.AddBatchWait(ctx, batch)
	} else {
		n, err = store.AddBatch(batch)
	}
	f.accepted.Add(int64(n))

	switch {
	case err == nil:
	case errors.Is(err, ErrCapacityExceeded) && policy == OverflowDrop:
		f.dropped.Add(int64(len(batch) - n))
		logger.WithFields(logrus.Fields{"hour": hour, "dropped": len(batch) - n}).
			Warnf("warehouse full, dropped %d units of %s", len(batch)-n, f.Product.Name)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		f.dropped.Add(int64(len(batch) - n))
		logger.WithField("hour", hour).Debugf("stopped waiting for space with %d units unplaced", len(batch)-n)
		return nil
	default:
		return fmt.Errorf("%s: %w", f.Name, err)
	}

	logger.WithField("hour", hour).Infof("%s produced %d units of %s", f.Name, n, f.Product.Name)
	return nil
}

// Stats returns a snapshot of the factory counters.
func (f *Factory) Stats() FactoryStats {
	return FactoryStats{
		Name:     f.Name,
		Product:  f.Product.Name,
		Ticks:    f.ticks.Load(),
		Produced: f.produced.Load(),
		Accepted: f.accepted.Load(),
		Dropped:  f.dropped.Load(),
	}
}
