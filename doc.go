// Package lvxrd simulates basal X-ray diffraction patterns of oriented
// clay-mineral aggregates and fits them to measurements.
//
// Patterns follow the Drits–Tchoubar matrix formalism: layers of G types
// stack as a Markov chain of Reichweite R, and the intensity at each
// reciprocal distance is the real trace of a CSDS-weighted progression of
// phase-junction matrix powers.
//
// Packages, bottom-up:
//
//	matrix/      — small dense real and complex kernels (Mul, Hadamard, Repeat, Trace)
//	scattering/  — Cromer–Mann atomic scattering factors and the atom-type table
//	component/   — layer structure factors SF(q) and phase factors PF(q)
//	probability/ — W/P stacking matrices and the R0, R1, R2G2, R3G2 models
//	csds/        — log-normal crystallite-size distributions
//	goniometer/  — instrument geometry, Lorentz-polarisation and sample corrections
//	engine/      — phase and specimen snapshots, intensity synthesis, cached Calculator
//	residual/    — Rp, Rwp and derivative Rp statistics
//	mixture/     — bounded fit of fractions, scales and backgrounds (gonum L-BFGS)
//	refine/      — structural refinement strategies with cooperative stop
//	cache/       — content-hashed memoisation: memory, SQLite or none
//	config/      — YAML configuration
//	logger/      — zap-backed structured logging
//
// Calculations are deterministic and single-threaded over immutable
// snapshots; degenerate inputs (invalid stacking statistics, missing atoms)
// yield zero patterns rather than errors. Only refinement runs long, on its
// own goroutine, polling a stop signal between evaluations.
//
// See examples/ for an end-to-end walkthrough.
package lvxrd
