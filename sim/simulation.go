// Implements the Simulation controller: builds the warehouse, factories and
// trucks, runs every worker until the deadline, joins them, then reports.

package sim

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyRun is returned by Run on a simulation that has already started.
var ErrAlreadyRun = errors.New("simulation already run")

// State is the lifecycle state of a Simulation.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateReporting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Simulation owns one run of the warehouse model.
type Simulation struct {
	ID         string
	cfg        Config
	warehouse  *Warehouse
	factories  []*Factory
	trucks     []*Truck
	dispatcher *Dispatcher

	state atomic.Int32
}

// NewSimulation validates cfg and catalog and builds every component.
// Trucks are registered in catalog order, which is the order the dispatcher
// serves them.
func NewSimulation(cfg Config, catalog Catalog) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	warehouse, err := NewWarehouse(cfg.CapacityMultiplier)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		ID:        xid.New().String(),
		cfg:       cfg,
		warehouse: warehouse,
	}
	for _, fs := range catalog.Factories {
		product, _ := catalog.product(fs.Product)
		s.factories = append(s.factories, NewFactory(fs.Name, product, fs.Rate))
	}
	for _, ts := range catalog.Trucks {
		s.trucks = append(s.trucks, NewTruck(ts.Model, ts.Capacity))
	}
	s.dispatcher = NewDispatcher(warehouse, s.trucks, cfg.Threshold, cfg.PollInterval)
	return s, nil
}

// State returns the current lifecycle state. Safe to call at any time.
func (s *Simulation) State() State {
	return State(s.state.Load())
}

func (s *Simulation) setState(st State) {
	s.state.Store(int32(st))
	logrus.WithField("run", s.ID).Debugf("simulation %s", st)
}

// Warehouse returns the shared warehouse.
func (s *Simulation) Warehouse() *Warehouse {
	return s.warehouse
}

// Dispatcher returns the dispatcher.
func (s *Simulation) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Factories returns the factories in registration order.
func (s *Simulation) Factories() []*Factory {
	return s.factories
}

// Run starts one goroutine per factory and one for the dispatcher, and stops
// them all when the configured duration elapses or ctx is cancelled.
// The controller waits for every worker, dispatcher included, before it
// reads the delivery log.
//
// Reaching the deadline is the normal way a run ends and is not an error.
// A fatal worker error (ErrCapacityExceeded under OverflowFail, or
// ErrTruckOverload) cancels the other workers and is returned together with
// the report of what was delivered before it.
func (s *Simulation) Run(ctx context.Context) (*Report, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, ErrAlreadyRun
	}
	logrus.WithFields(logrus.Fields{
		"run":      s.ID,
		"capacity": s.warehouse.Capacity(),
		"hours":    s.cfg.Hours,
		"tick":     s.cfg.Tick,
		"overflow": s.cfg.OverflowPolicy,
	}).Info("Starting simulation")

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Duration())
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	for _, f := range s.factories {
		g.Go(func() error {
			return f.Run(gctx, s.warehouse, s.cfg.Tick, s.cfg.OverflowPolicy)
		})
	}
	g.Go(func() error {
		return s.dispatcher.Run(gctx)
	})

	<-gctx.Done()
	s.setState(StateStopping)
	err := g.Wait()

	s.setState(StateReporting)
	report := Summarize(s.dispatcher.Log())
	report.RunID = s.ID
	report.SimulatedHours = s.cfg.Hours
	report.ElapsedSeconds = time.Since(start).Seconds()
	report.Warehouse = s.warehouse.Stats()
	for _, f := range s.factories {
		report.Factories = append(report.Factories, f.Stats())
	}
	if err != nil {
		report.Error = err.Error()
		logrus.WithField("run", s.ID).Errorf("simulation aborted: %v", err)
	} else {
		logrus.WithField("run", s.ID).Info("Simulation finished.")
	}

	s.setState(StateDone)
	report.State = StateDone.String()
	return report, err
}
