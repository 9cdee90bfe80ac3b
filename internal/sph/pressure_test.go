package sph

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestEquationOfState(t *testing.T) {
	prm := DefaultParams()

	if p := EquationOfState(prm.Rho0, prm); p != 0 {
		t.Errorf("P(ρ0) = %g, want 0", p)
	}
	if p := EquationOfState(0.5*prm.Rho0, prm); p >= 0 {
		t.Errorf("P(ρ0/2) = %g, want negative", p)
	}
	if p := EquationOfState(0, prm); p != -prm.Stiffness {
		t.Errorf("P(0) = %g, want %g", p, -prm.Stiffness)
	}

	prev := EquationOfState(1e-3, prm)
	for rho := 10.0; rho <= 2*prm.Rho0; rho += 10 {
		cur := EquationOfState(rho, prm)
		if cur <= prev {
			t.Fatalf("pressure not increasing at ρ=%g: %g <= %g", rho, cur, prev)
		}
		prev = cur
	}
}

func TestComputePressurePairRepels(t *testing.T) {
	prm := DefaultParams()
	prm.Rho0 = 0.1 // both densities end up above reference
	prm.DensityFloor = 1e-6

	a, b := r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1 + 0.5*prm.H, Y: 1}
	p := placed(a, b)
	ComputeDensity(p, prm, 1)
	ComputePressure(p, prm, 1)

	if w := Kernel(r2.Norm(r2.Sub(a, b)), prm.H); w <= 0 {
		t.Fatalf("W = %g, want > 0", w)
	}
	for i := range p.Pressure {
		if p.Density[i] <= prm.Rho0 || p.Pressure[i] <= 0 {
			t.Fatalf("particle %d: ρ=%g P=%g, want both above reference", i, p.Density[i], p.Pressure[i])
		}
	}

	gA, gB := p.PressureGrad[0], p.PressureGrad[1]
	if math.Abs(gA.X+gB.X) > 1e-9*math.Abs(gA.X) || gA.Y != 0 || gB.Y != 0 {
		t.Errorf("gradients not antisymmetric: %v vs %v", gA, gB)
	}

	// acceleration is −∇P/ρ: A (left) moves left, B (right) moves right
	accA := -gA.X / p.Density[0]
	accB := -gB.X / p.Density[1]
	if accA >= 0 || accB <= 0 {
		t.Errorf("pressure pulls pair together: accA=%g accB=%g", accA, accB)
	}
}

func TestComputePressurePairAttractsBelowReference(t *testing.T) {
	prm := DefaultParams()
	p := placed(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1.5, Y: 1})
	ComputeDensity(p, prm, 1)
	ComputePressure(p, prm, 1)

	if p.Pressure[0] >= 0 {
		t.Fatalf("pressure = %g, want negative below reference density", p.Pressure[0])
	}
	if accA := -p.PressureGrad[0].X / prm.flooredDensity(p.Density[0]); accA <= 0 {
		t.Errorf("negative pressure should pull A towards B, acc = %g", accA)
	}
}

func TestComputePressureZeroDensity(t *testing.T) {
	prm := DefaultParams()
	p := placed(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 10, Y: 10})
	ComputeDensity(p, prm, 1)
	ComputePressure(p, prm, 1)

	for i := range p.Pressure {
		if p.Density[i] != 0 {
			t.Fatalf("particle %d: density = %g, want 0", i, p.Density[i])
		}
		if p.Pressure[i] != -prm.Stiffness {
			t.Errorf("particle %d: pressure = %g, want %g", i, p.Pressure[i], -prm.Stiffness)
		}
		if p.PressureGrad[i] != (r2.Vec{}) {
			t.Errorf("particle %d: gradient = %v, want zero", i, p.PressureGrad[i])
		}
	}
}

func TestComputePressureSparseNeighboursFinite(t *testing.T) {
	prm := DefaultParams()
	// separation just under h gives a density close to zero
	p := placed(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1 + prm.H - 1e-9, Y: 1})
	ComputeDensity(p, prm, 1)
	ComputePressure(p, prm, 1)

	for i := range p.PressureGrad {
		if !finite(p.PressureGrad[i]) || !finite(p.KernelGrad[i]) {
			t.Errorf("particle %d: non-finite gradient %v", i, p.PressureGrad[i])
		}
	}
}

func TestComputePressureMatchesUnflooredFormula(t *testing.T) {
	prm := DefaultParams()
	prm.Gravity = r2.Vec{}
	a, b := r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1.5, Y: 1}
	p := placed(a, b)
	ComputeDensity(p, prm, 1)
	ComputePressure(p, prm, 1)

	rho := prm.Mass * Kernel(0.5, prm.H)
	if rho <= prm.DensityFloor {
		t.Fatalf("ρ = %g is not above the floor %g", rho, prm.DensityFloor)
	}
	if math.Abs(p.Density[0]-rho) > 1e-12*rho {
		t.Fatalf("density = %g, want %g", p.Density[0], rho)
	}

	pr := EquationOfState(rho, prm)
	want := r2.Scale(rho*prm.Mass*2*pr/(rho*rho), KernelGradient(r2.Sub(a, b), prm.H))
	got := p.PressureGrad[0]
	if math.Abs(got.X-want.X) > 1e-9*math.Abs(want.X) || got.Y != 0 {
		t.Errorf("∇P = %v, want %v", got, want)
	}

	Integrate(p, prm, r2.Vec{}, 1)
	wantVX := -prm.Dt * want.X / rho
	if math.Abs(p.Vel[0].X-wantVX) > 1e-9*math.Abs(wantVX) {
		t.Errorf("vx = %g, want %g from −∇P/ρ", p.Vel[0].X, wantVX)
	}
}
