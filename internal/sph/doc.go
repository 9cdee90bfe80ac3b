// Package sph implements a 2D weakly-compressible smoothed particle
// hydrodynamics (WCSPH) solver.
//
// The solver advances a fixed set of particles under gravity, pressure
// forces and a small shared random forcing, inside an open-topped
// rectangular domain. Each substep is three passes over the particles:
//
//   - [ComputeDensity]: kernel-weighted density summation
//   - [ComputePressure]: equation of state and pressure gradient
//   - [Integrate]: symplectic Euler update with boundary clamping
//
// Every pass is a data-parallel map over particles; passes are separated by
// a full barrier. [Solver] owns the particle store and runs the passes in
// order.
//
// # Example
//
//	prm := sph.DefaultParams()
//	s, err := sph.NewSolver(prm, rand.New(rand.NewSource(1)))
//	if err != nil {
//	    return err
//	}
//	for frame := 0; frame < 100; frame++ {
//	    s.Frame()
//	    points := s.Display(nil)
//	    draw(points)
//	}
package sph
