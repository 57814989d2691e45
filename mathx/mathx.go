package mathx

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Argmax returns the index of the largest element, the lowest index among ties.
// NaN elements are skipped. It panics if xs is empty.
func Argmax(xs []float64) int {
	return floats.MaxIdx(xs)
}

// IsMax reports whether xs[i] equals the maximum of xs.
func IsMax(xs []float64, i int) bool {
	return xs[i] == xs[Argmax(xs)]
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
