package sph

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"
)

// Source is a uniform random number generator on [0, 1).
// *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// DrawForcing draws the random forcing shared by every particle for one
// substep: (u₁ − 0.5, u₂)·scale. Both numbers are always drawn so the
// stream position does not depend on scale.
func DrawForcing(src Source, scale float64) r2.Vec {
	x := src.Float64() - 0.5
	y := src.Float64()
	return r2.Scale(scale, r2.Vec{X: x, Y: y})
}

// Integrate advances velocity and position by one symplectic Euler step,
//
//	v += dt(−∇P/ρ + g + forcing)
//	x += dt·v
//
// then clamps positions against the floor and side walls and multiplies
// the velocity of any clamped particle by prm.Damping. It refreshes the
// display buffer and returns the number of particles that hit a wall.
func Integrate(p *Particles, prm Params, forcing r2.Vec, workers int) int {
	accel := r2.Add(prm.Gravity, forcing)

	var collisions atomic.Int64
	parallelFor(p.Len(), workers, func(start, end int) {
		hits := 0
		for i := start; i < end; i++ {
			rho := prm.flooredDensity(p.Density[i])
			a := r2.Add(r2.Scale(-1/rho, p.PressureGrad[i]), accel)
			v := r2.Add(p.Vel[i], r2.Scale(prm.Dt, a))

			x, hit := prm.confine(r2.Add(p.Pos[i], r2.Scale(prm.Dt, v)))
			if hit {
				v = r2.Vec{X: v.X * prm.Damping.X, Y: v.Y * prm.Damping.Y}
				hits++
			}

			p.Vel[i] = v
			p.Pos[i] = x
			p.Display[i] = prm.toDisplay(x)
		}
		collisions.Add(int64(hits))
	})

	return int(collisions.Load())
}
