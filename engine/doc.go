// SPDX-License-Identifier: MIT

// Package engine synthesises diffraction patterns of mixed-layer phases with
// the Drits–Tchoubar matrix formalism.
//
// Stage overview (per q = 2·sinθ/λ):
//
//  1. Invalid phases (failed probability validation, or a component count
//     that does not match the model) yield an all-zero pattern.
//  2. Component structure factors SF and phase factors PF are evaluated and
//     expanded from G×G to the Gʳ×Gʳ state space: F[s][t] = SF_s·conj(SF_t)
//     and Φ[s][t] = PF_s, both indexed by the first layer of each state.
//  3. Q = Φ ⊙ P. The CSDS progression S = N̄·I + Σ 2·Σ_{m>n}(m−n)·w_m·Qⁿ runs
//     over n ∈ [Minimum, max) of the size distribution.
//  4. I(q) = Re Tr(F·W·S), multiplied by the absolute scale
//     d̄001 / (N̄·ρ̄·V̄²), the instrument corrections and the LP factor.
//
// DiffractedIntensity is the pure entry point. Calculator wraps the same
// stages with a cache.Cache and a logger, and turns a Specimen into one
// pattern per phase slot.
package engine
