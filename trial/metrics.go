package trial

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics is the per-step record of one policy in one trial. Rewards[i] and
// Optimal[i] belong to the i-th recorded step; Optimal holds 1 when the
// chosen arm's true mean equaled the best true mean, else 0.
type Metrics struct {
	Name    string
	Rewards []float64
	Optimal []float64
}

func newMetrics(name string, n int) Metrics {
	return Metrics{
		Name:    name,
		Rewards: make([]float64, 0, n),
		Optimal: make([]float64, 0, n),
	}
}

func (m *Metrics) add(reward float64, optimal bool) {
	m.Rewards = append(m.Rewards, reward)
	if optimal {
		m.Optimal = append(m.Optimal, 1.0)
	} else {
		m.Optimal = append(m.Optimal, 0.0)
	}
}

func (m Metrics) Len() int {
	return len(m.Rewards)
}

func (m Metrics) TotalReward() float64 {
	return floats.Sum(m.Rewards)
}

// MeanReward is the average recorded reward, the tail-window average when a
// burn-in was used. It is 0 when nothing was recorded.
func (m Metrics) MeanReward() float64 {
	if len(m.Rewards) == 0 {
		return 0.0
	}
	return stat.Mean(m.Rewards, nil)
}

func (m Metrics) OptimalFraction() float64 {
	if len(m.Optimal) == 0 {
		return 0.0
	}
	return stat.Mean(m.Optimal, nil)
}

// RunningAverage returns the cumulative mean reward after each recorded step.
func (m Metrics) RunningAverage() []float64 {
	return runningMean(m.Rewards)
}

// OptimalRate returns the cumulative fraction of optimal choices after each
// recorded step.
func (m Metrics) OptimalRate() []float64 {
	return runningMean(m.Optimal)
}

func runningMean(xs []float64) []float64 {
	ys := floats.CumSum(make([]float64, len(xs)), xs)
	for i := range ys {
		ys[i] /= float64(i + 1)
	}
	return ys
}

type Result struct {
	Policies []Metrics
	Oracle   Metrics
}

// Metrics returns the metrics recorded under name, the oracle included.
func (r Result) Metrics(name string) (Metrics, bool) {
	if name == r.Oracle.Name {
		return r.Oracle, true
	}
	for _, m := range r.Policies {
		if m.Name == name {
			return m, true
		}
	}
	return Metrics{}, false
}
