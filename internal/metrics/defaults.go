package metrics

import "github.com/san-kum/wcsph/internal/sim"

// DefaultSpeedLimit is the speed above which a frame counts as unstable.
// It is roughly the speed reached after free-falling 50 domain units.
const DefaultSpeedLimit = 30.0

// Defaults returns the standard per-run diagnostics.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewPotentialEnergy(),
		NewEnergyDrift(),
		NewMeanDensity(),
		NewMaxDensity(),
		NewMaxSpeed(),
		NewStability(DefaultSpeedLimit),
		NewCollisions(),
	}
}
