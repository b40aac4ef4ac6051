// SPDX-License-Identifier: MIT

// Package probability models the Markov statistics of layer stacking in a
// mixed-layer structure: for G layer types and Reichweite R, a family of
// joint abundances W and conditional junction probabilities P per order.
//
// Stage overview:
//
//  1. A Model turns a handful of named, bounded parameters into the top-order
//     W and P through a closed form specific to (R, G).
//  2. Matrices.Solve derives the joint order above the top, every lower-order W
//     by marginalising the first index and every lower-order P as a ratio of
//     neighbouring W orders (0 when the denominator is 0).
//  3. Matrices.Validate checks row-stochasticity, marginal consistency and the
//     [0,1] range per order. It never fails; it records validity flags and a
//     per-cell count of broken rules that the intensity engine consumes.
//
// Addressing:
//
//	A sequence of k layer types (i₁..i_k) is stored at Index(G, i) = Σ i_j·G^{k−j}
//	(first index most significant). W_k has Gᵏ cells, P_k has G^{k+1}.
//
// Supported models: R0 for G = 1..6, R1 for G = 2..4, R2 and R3 for G = 2.
package probability
