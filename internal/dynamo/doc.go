// Package dynamo provides the core data model for particle kinetics.
//
// The package defines the types shared by every stage of a simulation step:
//
//   - [Vector]: 3-component value type backed by mgl64.Vec3
//   - [Particle]: kinematic state, force accumulator and trajectory log
//   - [Ensemble]: contiguous, index-addressed arena of particles
//   - [Field]: uniform electric and magnetic field pair
//   - [Domain]: axis-aligned x/y bounds, z unconstrained
//
// # Example
//
//	e, _ := dynamo.Generate(1000, side, side, dynamo.ElectronMass, rng)
//	integrators.Boris{}.ApplyField(e, dt, field)
//	integrators.IntegratePosition(e, dt)
//	_ = e.RecordSample(dt)
//
// # Thread Safety
//
// Ensembles are NOT thread-safe. Only per-particle stages that draw no random
// numbers may be split across workers, see [ParallelFor].
package dynamo
