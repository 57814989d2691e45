package ucb

import (
	"math"

	"github.com/sw965/bandit/mathx"
)

// Func scores an arm from its value estimate v, the 1-based step number t
// and the arm's visit count n.
type Func func(v float64, t, n int) float64

// NewStandardFunc returns the UCB1-style score v + c*sqrt(ln(t)/n).
// An unvisited arm scores +Inf so that every arm is tried once.
func NewStandardFunc(c float64) Func {
	return func(v float64, t, n int) float64 {
		if n == 0 {
			return math.Inf(1)
		}
		return v + c*math.Sqrt(math.Log(float64(t))/float64(n))
	}
}

// Scores returns f evaluated for every arm at step t.
func Scores(f Func, values []float64, visits []int, t int) []float64 {
	scores := make([]float64, len(values))
	for i, v := range values {
		scores[i] = f(v, t, visits[i])
	}
	return scores
}

// Select returns the arm with the highest score, the lowest index among ties.
func Select(f Func, values []float64, visits []int, t int) int {
	return mathx.Argmax(Scores(f, values, visits, t))
}
