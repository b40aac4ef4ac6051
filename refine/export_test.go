// SPDX-License-Identifier: MIT

package refine

// Test bridge for unexported strategy internals; compiled into refine_test only.

// GeneticEvaluate scores unit-cube members with the genetic worker pool.
func GeneticEvaluate(rc *Context, stop *StopSignal, workers int, members [][]float64) ([]float64, error) {
	s := &genetic{opts: Options{Workers: workers}}
	return s.evaluate(rc, stop, newCube(rc), members)
}
