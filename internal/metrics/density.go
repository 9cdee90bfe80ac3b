package metrics

import "github.com/san-kum/wcsph/internal/sim"

// MeanDensity is the particle-averaged density; Value averages it over
// frames.
type MeanDensity struct {
	name    string
	current float64
	total   float64
	samples int
}

func NewMeanDensity() *MeanDensity {
	return &MeanDensity{name: "mean_density"}
}

func (d *MeanDensity) Name() string { return d.name }

func (d *MeanDensity) Observe(s sim.Sample) {
	rho := s.Particles.Density
	d.current = 0
	if len(rho) > 0 {
		sum := 0.0
		for _, v := range rho {
			sum += v
		}
		d.current = sum / float64(len(rho))
	}
	d.total += d.current
	d.samples++
}

func (d *MeanDensity) Current() float64 { return d.current }

func (d *MeanDensity) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.total / float64(d.samples)
}

func (d *MeanDensity) Reset() {
	d.current, d.total, d.samples = 0, 0, 0
}

// MaxDensity is the largest particle density, per frame and over the run.
type MaxDensity struct {
	name    string
	current float64
	max     float64
}

func NewMaxDensity() *MaxDensity {
	return &MaxDensity{name: "max_density"}
}

func (d *MaxDensity) Name() string { return d.name }

func (d *MaxDensity) Observe(s sim.Sample) {
	d.current = 0
	for _, v := range s.Particles.Density {
		if v > d.current {
			d.current = v
		}
	}
	if d.current > d.max {
		d.max = d.current
	}
}

func (d *MaxDensity) Current() float64 { return d.current }
func (d *MaxDensity) Value() float64   { return d.max }
func (d *MaxDensity) Reset()           { d.current, d.max = 0, 0 }
