package random

import (
	"math"
	"testing"
)

func TestStream_Deterministic(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}
	if a.Seed() != 42 {
		t.Errorf("expected seed 42, got %d", a.Seed())
	}
}

func TestStream_Exponential(t *testing.T) {
	s := New(7)
	rate := 4.0
	n := 200000
	sum := 0.0

	for i := 0; i < n; i++ {
		x := s.Exponential(rate)
		if x < 0 || math.IsInf(x, 0) {
			t.Fatalf("invalid draw %v", x)
		}
		sum += x
	}

	mean := sum / float64(n)
	if math.Abs(mean-1/rate) > 0.01/rate*5 {
		t.Errorf("expected mean ~%.4f, got %.4f", 1/rate, mean)
	}
}

func TestStream_Normal(t *testing.T) {
	s := New(3)
	dist := s.Normal(0, 2)
	n := 100000
	sum, sumSq := 0.0, 0.0

	for i := 0; i < n; i++ {
		x := dist.Rand()
		sum += x
		sumSq += x * x
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if math.Abs(mean) > 0.05 {
		t.Errorf("expected mean ~0, got %.4f", mean)
	}
	if math.Abs(math.Sqrt(variance)-2) > 0.05 {
		t.Errorf("expected stddev ~2, got %.4f", math.Sqrt(variance))
	}
}

func TestStream_IsotropicDirection(t *testing.T) {
	s := New(11)
	var mx, my, mz float64
	n := 50000

	for i := 0; i < n; i++ {
		x, y, z := s.IsotropicDirection()
		if r := math.Sqrt(x*x + y*y + z*z); math.Abs(r-1) > 1e-12 {
			t.Fatalf("direction not unit length: %v", r)
		}
		mx += x
		my += y
		mz += z
	}

	for _, m := range []float64{mx, my, mz} {
		if math.Abs(m/float64(n)) > 0.02 {
			t.Errorf("expected zero mean component, got %.4f", m/float64(n))
		}
	}
}
