// Package models provides concrete simulation problems for the
// framework.
//
// Each model implements the [problem.Problem] interface, defining the
// finite-volume residual of its governing equations:
//
//   - [Heat]: transient heat conduction in a 1D rock column, with an
//     episode schedule that ramps the boundary temperature
//   - [PowerInjection]: air injected into a water-saturated 1D porous
//     column, a two-phase immiscible flow problem
//
// Models supply data and hooks only; time stepping, retries, and the
// nonlinear solve all live in the framework.
package models
