// Package seed provides deterministic pseudo-random helpers for the mock
// providers and the heuristic strategy. Everything here is a pure function of
// its integer seed: no retained PRNG state, so the same address always maps to
// the same synthetic data.
package seed

import "math"

// FNV1a32 hashes a string with 32-bit FNV-1a. Used to derive seeds from
// normalized addresses and coordinates.
func FNV1a32(s string) uint32 {
	h := uint32(0x811c9dc5)
	for _, c := range []byte(s) {
		h ^= uint32(c)
		h *= 0x01000193
	}
	return h
}

// Rand returns n floats in [0,1) from a Mulberry32-style mixing function.
// Stateless: (seed, n) fully determines the output sequence.
func Rand(seed uint32, n int) []float64 {
	out := make([]float64, 0, n)
	t := seed + 0x6D2B79F5
	for i := 0; i < n; i++ {
		t = (t ^ (t >> 15)) * (t | 1)
		t ^= t + (t^(t>>7))*(t|61)
		r := float64(t^(t>>14)) / 4294967296.0
		out = append(out, r)
	}
	return out
}

// MoneyBand derives a +/- spread of 5-12% around base, seed-varied.
func MoneyBand(base int, seed uint32) (low, high int) {
	spread := 0.05 + Rand(seed+1, 1)[0]*0.07
	low = int(math.Round(float64(base) * (1 - spread)))
	high = int(math.Round(float64(base) * (1 + spread)))
	return low, high
}

// Sparkline generates 12 index points in [0,100] for charting. Visual only.
func Sparkline(seed uint32) []int {
	pts := make([]int, 0, 12)
	for i := 0; i < 12; i++ {
		v := 50 + math.Sin(float64(i+1)*0.6+float64(seed%10))*10 + Rand(seed+uint32(i), 1)[0]*14
		v = math.Max(0, math.Min(100, v))
		pts = append(pts, int(math.Round(v)))
	}
	return pts
}
