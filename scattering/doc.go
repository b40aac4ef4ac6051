// SPDX-License-Identifier: MIT

// Package scattering provides X-ray atomic scattering factors and per-atom
// structure factors for layer-stacking simulations.
//
// Units:
//   - q is 2·sinθ/λ in 1/nm, the abscissa every calculation in this module shares.
//   - Cromer–Mann coefficients and Debye–Waller factors are tabulated in Å²,
//     so the Gaussian argument is s = q/2 expressed in 1/Å, i.e. s = 0.05·q.
//   - z positions are in nm.
//
// Absent contributors:
//   - A nil *Atom or an Atom without a Type contributes an all-zero array of
//     len(q). This is the policy relied on by component and engine; nothing in
//     this package returns an error for malformed-but-shape-valid input.
package scattering
