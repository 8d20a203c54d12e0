package mathutil

import "math"

// Eigen2x2Sym computes eigenvalues and eigenvectors of a 2×2 symmetric matrix:
//
//	| a  b |
//	| b  d |
//
// Returns (eval1, eval2, evec1, evec2) where eval1 >= eval2.
// evec1 is the principal eigenvector (largest eigenvalue).
func Eigen2x2Sym(a, b, d float64) (float64, float64, [2]float64, [2]float64) {
	half := (a + d) / 2
	disc := half*half - (a*d - b*b)
	if disc < 0 {
		disc = 0
	}
	root := math.Sqrt(disc)
	eval1, eval2 := half+root, half-root

	switch {
	case math.Abs(b) > 1e-12:
		return eval1, eval2, unit2(eval1-d, b), unit2(eval2-d, b)
	case a >= d:
		return eval1, eval2, [2]float64{1, 0}, [2]float64{0, 1}
	default:
		return eval1, eval2, [2]float64{0, 1}, [2]float64{1, 0}
	}
}

func unit2(x, y float64) [2]float64 {
	l := math.Hypot(x, y)
	if l < 1e-12 {
		return [2]float64{1, 0}
	}
	return [2]float64{x / l, y / l}
}
