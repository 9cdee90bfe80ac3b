package sph

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kernel is the smoothing weight W(r, h) = 15/(πh⁶)·(h−r)³ for 0 < r < h.
// It is zero at r == 0, so a particle never contributes to itself.
func Kernel(r, h float64) float64 {
	if r <= 0 || r >= h {
		return 0
	}
	d := h - r
	return 15 / (math.Pi * pow6(h)) * d * d * d
}

// KernelDerivative is dW/dr on the same support as [Kernel].
func KernelDerivative(r, h float64) float64 {
	if r <= 0 || r >= h {
		return 0
	}
	d := h - r
	return -45 / (math.Pi * pow6(h)) * d * d
}

// KernelGradient returns ∇ᵢW for the displacement rij = xᵢ − xⱼ.
// The result points from i towards j, since W decreases with distance.
func KernelGradient(rij r2.Vec, h float64) r2.Vec {
	r := r2.Norm(rij)
	dw := KernelDerivative(r, h)
	if dw == 0 {
		return r2.Vec{}
	}
	return r2.Scale(dw/r, rij)
}

func pow6(x float64) float64 {
	x3 := x * x * x
	return x3 * x3
}
