package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/kinetics/internal/dynamo"
)

func newEnsemble(t *testing.T, mass, charge float64, pos, vel dynamo.Vector) dynamo.Ensemble {
	t.Helper()
	p, err := dynamo.NewParticle(mass, charge, pos, vel)
	if err != nil {
		t.Fatalf("new particle: %v", err)
	}
	return dynamo.Ensemble{p}
}

func TestBorisStraightLine(t *testing.T) {
	v0 := dynamo.Vec(1, -2, 0.5)
	x0 := dynamo.Vec(3, 4, 5)
	e := newEnsemble(t, 1, 1, x0, v0)

	dt := 0.01
	steps := 250
	for i := 0; i < steps; i++ {
		NewBoris().ApplyField(e, dt, dynamo.Field{})
		IntegratePosition(e, dt)
	}

	want := x0.Add(v0.Mul(float64(steps) * dt))
	if !e[0].Position.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("position = %v, want %v", e[0].Position, want)
	}
	if e[0].Velocity != v0 {
		t.Errorf("velocity changed without field: %v", e[0].Velocity)
	}
}

func TestBorisMagneticRotation(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
	}{
		{"small step", 0.1},
		{"unit step", 1.0},
		{"large step", 50.0},
	}

	field := dynamo.Field{B: dynamo.Vec(0, 0, 1)}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnsemble(t, 1, 1, dynamo.Vector{}, dynamo.Vec(1, 0, 0))
			NewBoris().ApplyField(e, tt.dt, field)

			v := e[0].Velocity
			if speed := v.Len(); math.Abs(speed-1) > 1e-12 {
				t.Errorf("speed = %.15f, want 1", speed)
			}
			// positive charge in +z field gyrates clockwise
			if math.Abs(v[0]-math.Cos(tt.dt)) > 1e-9 || math.Abs(v[1]+math.Sin(tt.dt)) > 1e-9 {
				t.Errorf("velocity = %v, want rotation by %v", v, tt.dt)
			}
			if e[0].PreviousVelocity != dynamo.Vec(1, 0, 0) {
				t.Errorf("previous velocity = %v", e[0].PreviousVelocity)
			}
		})
	}
}

func TestBorisSpeedInvariantOverManySteps(t *testing.T) {
	e := newEnsemble(t, 2, -3, dynamo.Vector{}, dynamo.Vec(0.3, 0.4, 1.2))
	field := dynamo.Field{B: dynamo.Vec(0.2, -0.5, 1)}

	for i := 0; i < 10000; i++ {
		NewBoris().ApplyField(e, 7.3, field)
	}

	if got := e[0].Velocity.Len(); math.Abs(got-1.3) > 1e-9 {
		t.Errorf("speed drifted to %v, want 1.3", got)
	}
}

func TestBorisElectricKick(t *testing.T) {
	e := newEnsemble(t, 2, 4, dynamo.Vector{}, dynamo.Vector{})
	field := dynamo.Field{E: dynamo.Vec(1, 0, -1)}

	NewBoris().ApplyField(e, 0.5, field)

	// q·dt/m = 1
	want := dynamo.Vec(1, 0, -1)
	if !e[0].Velocity.ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("velocity = %v, want %v", e[0].Velocity, want)
	}
}

func TestBorisPairForceKick(t *testing.T) {
	e := newEnsemble(t, 2, 0, dynamo.Vector{}, dynamo.Vec(1, 0, 0))
	e[0].Force = dynamo.Vec(0, 4, 0)

	NewBoris().ApplyField(e, 0.5, dynamo.Field{B: dynamo.Vec(0, 0, 1)})

	// F·dt/m = 1 along y; a neutral particle does not gyrate
	if !e[0].Velocity.ApproxEqualThreshold(dynamo.Vec(1, 1, 0), 1e-12) {
		t.Errorf("velocity = %v, want (1, 1, 0)", e[0].Velocity)
	}

	rel := newEnsemble(t, 2, 0, dynamo.Vector{}, dynamo.Vector{})
	rel[0].Force = dynamo.Vec(0, 4, 0)
	NewBorisRelativistic().ApplyField(rel, 0.5, dynamo.Field{})
	if !rel[0].RelativisticVelocity.ApproxEqualThreshold(dynamo.Vec(0, 1, 0), 1e-12) {
		t.Errorf("proper velocity = %v, want (0, 1, 0)", rel[0].RelativisticVelocity)
	}
}

func TestBorisNeutralParticle(t *testing.T) {
	e := newEnsemble(t, 1, 0, dynamo.Vector{}, dynamo.Vec(1, 1, 0))
	NewBoris().ApplyField(e, 0.1, dynamo.Field{E: dynamo.Vec(1, 0, 0), B: dynamo.Vec(0, 0, 1)})

	if e[0].Velocity != dynamo.Vec(1, 1, 0) {
		t.Errorf("neutral particle deflected: %v", e[0].Velocity)
	}
}

func TestBorisWorkersMatchSequential(t *testing.T) {
	n := 1000
	seq := make(dynamo.Ensemble, n)
	for i := range seq {
		v := dynamo.Vec(float64(i%7)-3, float64(i%5)-2, float64(i%3))
		p, _ := dynamo.NewParticle(1+float64(i%4), float64(i%3)-1, dynamo.Vector{}, v)
		seq[i] = p
	}
	par := seq.Clone()

	field := dynamo.Field{E: dynamo.Vec(0.1, 0, 0), B: dynamo.Vec(0, 0.3, 1)}
	for s := 0; s < 20; s++ {
		Boris{}.ApplyField(seq, 0.05, field)
		Boris{Workers: 4}.ApplyField(par, 0.05, field)
	}

	for i := range seq {
		if seq[i].Velocity != par[i].Velocity {
			t.Fatalf("particle %d: sequential %v, parallel %v", i, seq[i].Velocity, par[i].Velocity)
		}
	}
}

func TestBorisRelativisticSpeedLimit(t *testing.T) {
	e := newEnsemble(t, dynamo.ElectronMass, dynamo.ElectronCharge, dynamo.Vector{}, dynamo.Vec(0, 1e8, 0))
	field := dynamo.Field{E: dynamo.Vec(1e8, 0, 0), B: dynamo.Vec(0, 0, 1)}

	for i := 0; i < 1000; i++ {
		NewBorisRelativistic().ApplyField(e, 1e-13, field)
		IntegratePosition(e, 1e-13)
	}

	if speed := e[0].Velocity.Len(); !(speed < dynamo.SpeedOfLight) {
		t.Errorf("speed %v not below c", speed)
	}
	u := e[0].RelativisticVelocity
	gamma := dynamo.LorentzFactorProper(u.Len())
	if diff := e[0].Velocity.Mul(gamma).Sub(u).Len(); diff/u.Len() > 1e-12 {
		t.Errorf("velocity %v inconsistent with proper velocity %v", e[0].Velocity, u)
	}
}

func TestBorisRelativisticMagneticInvariance(t *testing.T) {
	e := newEnsemble(t, dynamo.ElectronMass, -dynamo.ElectronCharge, dynamo.Vector{}, dynamo.Vec(0.9*dynamo.SpeedOfLight, 0, 0))
	u0 := e[0].RelativisticVelocity.Len()
	field := dynamo.Field{B: dynamo.Vec(0, 0, 2)}

	for i := 0; i < 500; i++ {
		NewBorisRelativistic().ApplyField(e, 1e-12, field)
	}

	if got := e[0].RelativisticVelocity.Len(); math.Abs(got-u0)/u0 > 1e-12 {
		t.Errorf("proper speed drifted: %v -> %v", u0, got)
	}
	if got := e[0].Velocity.Len(); math.Abs(got-0.9*dynamo.SpeedOfLight)/dynamo.SpeedOfLight > 1e-9 {
		t.Errorf("speed = %v, want 0.9c", got)
	}
}

func TestBorisRelativisticClassicalLimit(t *testing.T) {
	v0 := dynamo.Vec(1, 2, 0)
	classical := newEnsemble(t, 1, 1, dynamo.Vector{}, v0)
	relativistic := classical.Clone()
	field := dynamo.Field{E: dynamo.Vec(0.5, 0, 0), B: dynamo.Vec(0, 0, 1)}

	for i := 0; i < 100; i++ {
		NewBoris().ApplyField(classical, 0.01, field)
		NewBorisRelativistic().ApplyField(relativistic, 0.01, field)
	}

	if !classical[0].Velocity.ApproxEqualThreshold(relativistic[0].Velocity, 1e-9) {
		t.Errorf("classical %v, relativistic %v", classical[0].Velocity, relativistic[0].Velocity)
	}
}

func TestGet(t *testing.T) {
	for _, name := range List() {
		p, err := Get(name, 1)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("Get(%q).Name() = %q", name, p.Name())
		}
	}
	if _, err := Get("rk4", 1); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
