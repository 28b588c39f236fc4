package testutil

import (
	"fmt"
	"math"
	"testing"
)

// recordingTB captures Errorf calls so the failure path of AssertFinite can
// be checked without failing the enclosing test. Any other testing.TB
// method panics through the nil embedded interface.
type recordingTB struct {
	testing.TB
	errors []string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestAssertFinite(t *testing.T) {
	t.Parallel()

	rec := &recordingTB{}
	AssertFinite(rec, "residual", 0, -1, 1e300)
	if len(rec.errors) != 0 {
		t.Fatalf("finite values reported: %v", rec.errors)
	}

	AssertFinite(rec, "residual", 1, math.NaN(), math.Inf(-1))
	if len(rec.errors) != 2 {
		t.Fatalf("expected two errors, got %v", rec.errors)
	}
	if rec.errors[0] != "residual[1] = NaN, want finite" {
		t.Errorf("unexpected message %q", rec.errors[0])
	}
}

func TestRandomPoint_Deterministic(t *testing.T) {
	t.Parallel()

	a, b := NewRand(7), NewRand(7)
	for i := 0; i < 100; i++ {
		pa, pb := RandomPoint(a, 10), RandomPoint(b, 10)
		if pa != pb {
			t.Fatalf("draw %d differs: %v vs %v", i, pa, pb)
		}
		if math.Abs(pa.X) > 10 || math.Abs(pa.Y) > 10 {
			t.Fatalf("draw %d out of range: %v", i, pa)
		}
	}
}
