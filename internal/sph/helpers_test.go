package sph

import "gonum.org/v1/gonum/spatial/r2"

// seqSource replays a fixed sequence of values.
type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func quietParams() Params {
	prm := DefaultParams()
	prm.Gravity = r2.Vec{}
	prm.Stiffness = 0
	prm.ForcingScale = 0
	return prm
}

func placed(positions ...r2.Vec) *Particles {
	p := NewParticles(len(positions))
	copy(p.Pos, positions)
	return p
}
