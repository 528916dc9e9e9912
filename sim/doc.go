// Package sim provides the concurrency core of the factory-flow warehouse simulation.
//
// # Reading Guide
//
// Start with these files to understand the simulation:
//   - warehouse.go: the bounded, goroutine-safe FIFO that every worker shares
//   - factory.go: producer loop, one goroutine per factory, one batch per tick
//   - dispatcher.go: the monitor that polls the fill ratio and drains the
//     warehouse into trucks when the high-water threshold is reached
//   - simulation.go: the controller state machine (Idle, Running, Stopping,
//     Reporting, Done) that owns the deadline and joins every worker
//
// # Ownership
//
// The Warehouse is the only value mutated by more than one goroutine and
// serializes all access internally. Trucks and the DeliveryLog are touched
// only by the dispatcher goroutine while the simulation runs; the controller
// reads them after the dispatcher has been joined.
//
// # Time
//
// One tick is one simulated hour. The default tick is one second of wall
// time; tests shrink it to a few milliseconds.
package sim
