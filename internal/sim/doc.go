// Package sim drives an [sph.Solver] frame by frame.
//
// A [Simulator] runs a fixed number of frames (or streams frames to a
// callback), records display buffers, feeds per-frame [Metric]s and
// [Observer]s, and stops with a [SimulationError] wrapping [ErrUnstable]
// once the particle state stops being finite. An [Ensemble] runs the same
// setup for several seeds concurrently.
//
// # Example
//
//	solver, _ := sph.NewSolver(prm, rand.New(rand.NewSource(seed)))
//	s := sim.New(solver)
//	s.AddMetric(metrics.NewKineticEnergy())
//	result, err := s.Run(ctx, sim.Config{Frames: 600, RecordEvery: 1, ValidateState: true})
//
// Simulator instances are NOT thread-safe.
package sim
