// Package physics accumulates pairwise interactions across an ensemble.
//
// Interaction laws are strategies supplied by the caller:
//
//   - [ForceLaw]: force exerted on the first particle by the second
//   - [PotentialLaw]: pair potential energy
//   - [Gravity], [Coulomb]: inverse-square laws implementing both
//
// Every unordered pair (i, j>i) is visited exactly once and the force is
// added to i and subtracted from j, so the net force over an isolated
// ensemble is zero for any antisymmetric law. The sum is brute-force O(n²).
//
//	physics.ClearForces(e)
//	physics.AccumulateForces(e, physics.NewGravity(physics.GravityKm))
//	integrators.IntegrateVelocity(e, dt)
package physics
