package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a run with millisecond-scale ticks.
func testConfig(multiplier, hours int, tick time.Duration) Config {
	cfg := DefaultConfig()
	cfg.CapacityMultiplier = multiplier
	cfg.Hours = hours
	cfg.Tick = tick
	cfg.PollInterval = 100 * time.Microsecond
	return cfg
}

func TestNewSimulation_InvalidInputs_Rejected(t *testing.T) {
	_, err := NewSimulation(Config{}, DefaultCatalog())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSimulation(DefaultConfig(), Catalog{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewSimulation_BuildsFromCatalog(t *testing.T) {
	s, err := NewSimulation(DefaultConfig(), DefaultCatalog())
	require.NoError(t, err)

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 5000, s.Warehouse().Capacity())
	require.Len(t, s.Factories(), 3)
	assert.Equal(t, []int{50, 55, 60}, []int{s.Factories()[0].Rate, s.Factories()[1].Rate, s.Factories()[2].Rate})
	assert.Equal(t, "Product B", s.Factories()[1].Product.Name)
	assert.NotEmpty(t, s.ID)
}

func TestSimulation_Run_NoDispatch_ReportsNoData(t *testing.T) {
	// GIVEN the reference setup (capacity 5000, 165 units per hour) for 10 hours
	s, err := NewSimulation(testConfig(100, 10, 5*time.Millisecond), DefaultCatalog())
	require.NoError(t, err)

	// WHEN it runs to the deadline
	report, err := s.Run(context.Background())

	// THEN the threshold is never reached and the report has no delivery data
	require.NoError(t, err)
	assert.Equal(t, StateDone, s.State())
	assert.Equal(t, "done", report.State)
	assert.Equal(t, 0, report.Deliveries)
	assert.False(t, report.HasData)
	assert.Nil(t, report.MostFrequent)
	assert.LessOrEqual(t, report.Warehouse.Accepted, 10*165)
	assert.Equal(t, report.Warehouse.Accepted, report.Warehouse.Size)
}

func TestSimulation_Run_DispatchesAndConservesProducts(t *testing.T) {
	// GIVEN a 500-unit warehouse: 3 hours of production cross the 95% mark
	cfg := testConfig(10, 12, 10*time.Millisecond)
	cfg.OverflowPolicy = OverflowDrop
	s, err := NewSimulation(cfg, DefaultCatalog())
	require.NoError(t, err)

	// WHEN it runs to the deadline
	report, err := s.Run(context.Background())
	require.NoError(t, err)

	// THEN trucks were dispatched
	require.True(t, report.HasData)
	assert.GreaterOrEqual(t, s.Dispatcher().Cycles(), 1)

	// AND nothing was created or lost by dispatching
	log := s.Dispatcher().Log()
	assert.Equal(t, report.Warehouse.Retrieved, log.TotalItems())
	assert.Equal(t, report.Warehouse.Accepted, report.Warehouse.Retrieved+report.Warehouse.Size)
	sum := 0
	for _, ps := range report.Products {
		sum += ps.Total
	}
	assert.Equal(t, report.TotalItems, sum)

	// AND every load respected its truck's capacity, trucks in registration order
	capacity := map[string]int{"Small Truck": 100, "Medium Truck": 150, "Large Truck": 200}
	for _, d := range log.Entries() {
		assert.LessOrEqual(t, len(d.Items), capacity[d.Truck])
	}
	assert.Equal(t, "Small Truck", log.Entries()[0].Truck)

	var produced, accepted, dropped int64
	for _, fs := range report.Factories {
		produced += fs.Produced
		accepted += fs.Accepted
		dropped += fs.Dropped
		assert.LessOrEqual(t, fs.Ticks, int64(cfg.Hours))
	}
	assert.Equal(t, produced, accepted+dropped)
	assert.Equal(t, int(accepted), report.Warehouse.Accepted)
}

func TestSimulation_Run_StopsWithinOneTickOfDeadline(t *testing.T) {
	tick := 20 * time.Millisecond
	s, err := NewSimulation(testConfig(100, 3, tick), DefaultCatalog())
	require.NoError(t, err)

	start := time.Now()
	_, err = s.Run(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	// generous slack for slow CI schedulers
	assert.Less(t, elapsed, 3*tick+tick+100*time.Millisecond)
	assert.GreaterOrEqual(t, elapsed, 3*tick)
}

func TestSimulation_Run_ParentCancel_EndsNormally(t *testing.T) {
	s, err := NewSimulation(testConfig(100, 1000, 5*time.Millisecond), DefaultCatalog())
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	report, err := s.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, StateDone, s.State())
	assert.NotNil(t, report)
}

func TestSimulation_Run_OverflowFail_AbortsWithReport(t *testing.T) {
	// GIVEN a 50-unit warehouse: the first hour already overflows it
	cfg := testConfig(1, 5, 5*time.Millisecond)
	cfg.Threshold = 1.0
	s, err := NewSimulation(cfg, DefaultCatalog())
	require.NoError(t, err)

	report, err := s.Run(context.Background())

	assert.ErrorIs(t, err, ErrCapacityExceeded)
	require.NotNil(t, report)
	assert.NotEmpty(t, report.Error)
	assert.Equal(t, StateDone, s.State())
	assert.LessOrEqual(t, report.Warehouse.Peak, 50)
}

func TestSimulation_Run_Twice_ReturnsErrAlreadyRun(t *testing.T) {
	s, err := NewSimulation(testConfig(100, 1, time.Millisecond), DefaultCatalog())
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	_, err = s.Run(context.Background())

	assert.ErrorIs(t, err, ErrAlreadyRun)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "stopping", StateStopping.String())
	assert.Equal(t, "State(9)", State(9).String())
}
