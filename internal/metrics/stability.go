package metrics

import (
	"github.com/san-kum/wcsph/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

// MaxSpeed is the fastest particle speed, per frame and over the run.
type MaxSpeed struct {
	name    string
	current float64
	max     float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(s sim.Sample) {
	m.current = maxSpeed(s)
	if m.current > m.max {
		m.max = m.current
	}
}

func (m *MaxSpeed) Current() float64 { return m.current }
func (m *MaxSpeed) Value() float64   { return m.max }
func (m *MaxSpeed) Reset()           { m.current, m.max = 0, 0 }

// Stability is the fraction of frames in which every particle stayed under
// the speed threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
	current    float64
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sample sim.Sample) {
	s.samples++
	s.current = 1
	if maxSpeed(sample) > s.threshold {
		s.violations++
		s.current = 0
	}
}

func (s *Stability) Current() float64 { return s.current }

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.current = 0
}

// Collisions counts wall hits: per frame, and in total over the run.
type Collisions struct {
	name    string
	current float64
	total   float64
}

func NewCollisions() *Collisions {
	return &Collisions{name: "collisions"}
}

func (c *Collisions) Name() string { return c.name }

func (c *Collisions) Observe(s sim.Sample) {
	c.current = float64(s.Collisions)
	c.total += c.current
}

func (c *Collisions) Current() float64 { return c.current }
func (c *Collisions) Value() float64   { return c.total }
func (c *Collisions) Reset()           { c.current, c.total = 0, 0 }

func maxSpeed(s sim.Sample) float64 {
	fastest := 0.0
	for _, v := range s.Particles.Vel {
		if n := r2.Norm(v); n > fastest {
			fastest = n
		}
	}
	return fastest
}
