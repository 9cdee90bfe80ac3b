// Package analysis inspects recorded metric series.
//
// A sloshing tank shows up as a periodic component in kinetic energy or
// mean density. [Spectrum] gives the one-sided power spectrum of a series
// sampled once per frame and [DominantFrequency] picks its strongest
// non-constant component:
//
//	freq, power := analysis.DominantFrequency(series["kinetic_energy"], frameInterval)
package analysis
