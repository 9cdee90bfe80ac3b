package sph

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero particles", func(p *Params) { p.N = 0 }},
		{"zero width", func(p *Params) { p.Width = 0 }},
		{"negative height", func(p *Params) { p.Height = -1 }},
		{"zero dt", func(p *Params) { p.Dt = 0 }},
		{"negative dt", func(p *Params) { p.Dt = -0.01 }},
		{"zero mass", func(p *Params) { p.Mass = 0 }},
		{"zero support radius", func(p *Params) { p.H = 0 }},
		{"negative support radius", func(p *Params) { p.H = -1 }},
		{"zero reference density", func(p *Params) { p.Rho0 = 0 }},
		{"negative stiffness", func(p *Params) { p.Stiffness = -1 }},
		{"zero gamma", func(p *Params) { p.Gamma = 0 }},
		{"epsilon past width", func(p *Params) { p.Epsilon = p.Width }},
		{"negative forcing", func(p *Params) { p.ForcingScale = -1 }},
		{"zero density floor", func(p *Params) { p.DensityFloor = 0 }},
		{"NaN gravity", func(p *Params) { p.Gravity.Y = math.NaN() }},
		{"infinite dt", func(p *Params) { p.Dt = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prm := DefaultParams()
			tt.mutate(&prm)
			if err := prm.Validate(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate() = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestNewSolverErrors(t *testing.T) {
	prm := DefaultParams()
	prm.H = 0
	if _, err := NewSolver(prm, rand.New(rand.NewSource(1))); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("bad params: err = %v", err)
	}
	if _, err := NewSolver(DefaultParams(), nil); !errors.Is(err, ErrNilSource) {
		t.Errorf("nil source: err = %v", err)
	}
	if _, err := NewSolver(DefaultParams(), rand.New(rand.NewSource(1)), WithSubsteps(0)); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("zero substeps: err = %v", err)
	}
}

func TestNewSolverInitializes(t *testing.T) {
	prm := DefaultParams()
	s, err := NewSolver(prm, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatal(err)
	}

	p := s.Particles()
	if p.Len() != prm.N {
		t.Fatalf("len = %d, want %d", p.Len(), prm.N)
	}
	for i := 0; i < p.Len(); i++ {
		x := p.Pos[i]
		if x.X < 0 || x.X >= prm.Width || x.Y < 0 || x.Y >= prm.Height {
			t.Errorf("particle %d at %v outside domain", i, x)
		}
		if p.Density[i] != prm.Rho0 {
			t.Errorf("particle %d: density = %g, want %g", i, p.Density[i], prm.Rho0)
		}
		if p.Vel[i] != (r2.Vec{}) || p.Pressure[i] != 0 {
			t.Errorf("particle %d: non-zero initial state", i)
		}
	}
}

func TestSolverFrameCountsSubsteps(t *testing.T) {
	prm := quietParams()
	s, err := NewSolver(prm, rand.New(rand.NewSource(1)), WithSubsteps(4))
	if err != nil {
		t.Fatal(err)
	}

	s.Frame()
	s.Frame()
	if s.Steps() != 8 {
		t.Errorf("steps = %d, want 8", s.Steps())
	}
	if math.Abs(s.Time()-8*prm.Dt) > 1e-15 {
		t.Errorf("time = %g, want %g", s.Time(), 8*prm.Dt)
	}

	s.Reset()
	if s.Steps() != 0 || s.Time() != 0 {
		t.Errorf("reset left steps=%d time=%g", s.Steps(), s.Time())
	}
}

func TestSolverResetsDensityEachSubstep(t *testing.T) {
	prm := quietParams()
	prm.N = 1

	s, err := NewSolver(prm, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	s.Substep()
	s.Substep()

	// a lone particle has no neighbours; the ρ0 baseline must not linger
	if rho := s.Particles().Density[0]; rho != 0 {
		t.Errorf("density = %g, want 0", rho)
	}
}

func TestSolverPureDrift(t *testing.T) {
	prm := quietParams()
	prm.N = 10

	s, err := NewSolver(prm, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}

	p := s.Particles()
	for i := range p.Pos {
		p.Pos[i] = r2.Vec{X: 5 + 3*float64(i), Y: 10}
		p.Vel[i] = r2.Vec{X: 0.1, Y: 0.05 * float64(i)}
	}
	want := append([]r2.Vec(nil), p.Vel...)

	s.Frame()
	s.Frame()

	for i := range p.Vel {
		if p.Vel[i] != want[i] {
			t.Errorf("particle %d: velocity %v changed from %v", i, p.Vel[i], want[i])
		}
	}
}

func TestSolverSingleParticleFall(t *testing.T) {
	prm := quietParams()
	prm.N = 1
	prm.Gravity = r2.Vec{X: 0, Y: -9.8}

	s, err := NewSolver(prm, &seqSource{vals: []float64{0.5}}, WithSubsteps(1))
	if err != nil {
		t.Fatal(err)
	}

	p := s.Particles()
	y0 := p.Pos[0].Y
	s.Frame()
	if math.Abs(p.Vel[0].Y+0.049) > 1e-12 {
		t.Errorf("vy = %g, want -0.049", p.Vel[0].Y)
	}
	if p.Pos[0].Y >= y0 {
		t.Errorf("y = %g did not drop from %g", p.Pos[0].Y, y0)
	}

	hit := false
	for i := 0; i < 2000 && !hit; i++ {
		hit = s.Substep() > 0
	}
	if !hit {
		t.Fatal("particle never reached the floor")
	}
	if p.Pos[0].Y != prm.Epsilon || p.Vel[0].Y <= 0 {
		t.Errorf("after floor hit y=%g vy=%g, want y=ε and vy>0", p.Pos[0].Y, p.Vel[0].Y)
	}
}

func TestSolverDeterministic(t *testing.T) {
	prm := DefaultParams()
	prm.N = 120
	prm.Rho0 = 1
	prm.Stiffness = 2
	prm.DensityFloor = 0.1

	run := func(workers int) []r2.Vec {
		s, err := NewSolver(prm, rand.New(rand.NewSource(42)), WithWorkers(workers))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 5; i++ {
			s.Frame()
		}
		return s.Display(nil)
	}

	serial := run(1)
	parallel := run(6)
	again := run(6)
	for i := range serial {
		if serial[i] != parallel[i] || parallel[i] != again[i] {
			t.Fatalf("particle %d diverged: %v %v %v", i, serial[i], parallel[i], again[i])
		}
	}
}

func TestSolverIsolatedParticleStaysFinite(t *testing.T) {
	prm := DefaultParams()
	prm.N = 1

	s, err := NewSolver(prm, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatal(err)
	}

	p := s.Particles()
	for frame := 0; frame < 50; frame++ {
		s.Frame()
		if p.Density[0] != 0 {
			t.Fatalf("frame %d: lone particle density = %g, want 0", frame, p.Density[0])
		}
		if !p.Valid() {
			t.Fatalf("frame %d: non-finite state pos=%v vel=%v", frame, p.Pos[0], p.Vel[0])
		}
	}

	q := placed(r2.Vec{X: 5, Y: 5})
	ComputeDensity(q, prm, 1)
	ComputePressure(q, prm, 1)
	Integrate(q, prm, r2.Vec{X: 0.1, Y: 0.2}, 1)
	if !q.Valid() {
		t.Errorf("single integrate produced pos=%v vel=%v", q.Pos[0], q.Vel[0])
	}
}
