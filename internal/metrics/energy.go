package metrics

import (
	"math"

	"github.com/san-kum/wcsph/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

func kinetic(s sim.Sample) float64 {
	ke := 0.0
	for _, v := range s.Particles.Vel {
		ke += r2.Norm2(v)
	}
	return 0.5 * s.Params.Mass * ke
}

// potential is −m Σ g·x, zero on the line through the origin normal to g.
func potential(s sim.Sample) float64 {
	pe := 0.0
	for _, x := range s.Particles.Pos {
		pe -= r2.Dot(s.Params.Gravity, x)
	}
	return s.Params.Mass * pe
}

// KineticEnergy reports ½m Σ|v|²; Value is the mean over frames.
type KineticEnergy struct {
	name    string
	current float64
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(s sim.Sample) {
	e.current = kinetic(s)
	e.total += e.current
	e.samples++
}

func (e *KineticEnergy) Current() float64 { return e.current }

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.current, e.total, e.samples = 0, 0, 0
}

// PotentialEnergy reports the gravitational potential energy; Value is the
// mean over frames.
type PotentialEnergy struct {
	name    string
	current float64
	total   float64
	samples int
}

func NewPotentialEnergy() *PotentialEnergy {
	return &PotentialEnergy{name: "potential_energy"}
}

func (e *PotentialEnergy) Name() string { return e.name }

func (e *PotentialEnergy) Observe(s sim.Sample) {
	e.current = potential(s)
	e.total += e.current
	e.samples++
}

func (e *PotentialEnergy) Current() float64 { return e.current }

func (e *PotentialEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *PotentialEnergy) Reset() {
	e.current, e.total, e.samples = 0, 0, 0
}

// EnergyDrift tracks the largest relative change of kinetic plus potential
// energy from the first observed frame. Wall damping and forcing make it
// grow even in a well-behaved run; a sudden jump usually means the time
// step is too large for the stiffness.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	current       float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s sim.Sample) {
	energy := kinetic(s) + potential(s)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	e.current = 0
	if e.initialEnergy != 0 {
		e.current = math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, e.current)
	}
}

func (e *EnergyDrift) Current() float64 { return e.current }
func (e *EnergyDrift) Value() float64   { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy, e.current, e.maxDrift, e.samples = 0, 0, 0, 0
}
