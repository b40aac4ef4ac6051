// Package matrix provides the small dense linear-algebra kernel used by the
// diffraction engine.
//
// 🚀 What is inside?
//
//   - Dense  — row-major float64 matrix (stacking W / P matrices).
//   - CDense — row-major complex128 matrix (structure-factor and phase matrices).
//   - Kernels: Mul, CMul / CMulInto, CHadamard, AddScaled, CRepeat, CTrace, Diag.
//
// ✨ Policy:
//   - Public accessors (At/Set) never panic; they return sentinel errors.
//   - Kernels validate shapes once and then run flat-slice loops in a fixed
//     i→k→j order, so results are bit-for-bit reproducible.
//   - No hidden goroutines; callers decide about parallelism.
//
// Complexity quicksheet:
//
//	NewDense/NewCDense O(r·c); At/Set O(1); Mul O(r·n·c); Hadamard O(r·c); Trace O(n).
package matrix
