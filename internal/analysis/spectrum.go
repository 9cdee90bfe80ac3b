package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum returns the one-sided power spectrum of data after removing its
// mean. Bin k corresponds to k/(len(data)·interval) Hz.
func Spectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, n/2+1)
	for i := range ps {
		a := cmplx.Abs(coeffs[i])
		ps[i] = a * a / float64(n)
	}
	return ps
}

// DominantFrequency returns the frequency in Hz and power of the strongest
// non-zero bin. interval is the time between samples.
func DominantFrequency(data []float64, interval float64) (float64, float64) {
	ps := Spectrum(data)
	if len(ps) < 2 || interval <= 0 {
		return 0, 0
	}

	idx := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[idx] {
			idx = i
		}
	}
	return float64(idx) / (float64(len(data)) * interval), ps[idx]
}
