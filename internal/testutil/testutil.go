// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/golang/geo/r2"
)

// AssertFinite fails the test if any value is NaN or ±Inf.
func AssertFinite(t testing.TB, name string, values ...float64) {
	t.Helper()
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s[%d] = %v, want finite", name, i, v)
		}
	}
}

// NewRand returns a deterministic generator for property tests.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomPoint returns a point with coordinates uniform in [-scale, scale].
func RandomPoint(rng *rand.Rand, scale float64) r2.Point {
	return r2.Point{
		X: (rng.Float64()*2 - 1) * scale,
		Y: (rng.Float64()*2 - 1) * scale,
	}
}
