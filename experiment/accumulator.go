package experiment

import (
	"errors"
	"fmt"

	"github.com/sw965/bandit/trial"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrEmptyAccumulator = errors.New("Accumulator: no trials added")
	ErrLayoutMismatch   = errors.New("Accumulator: trial layout mismatch")
)

// Accumulator sums per-step metrics of independent trials elementwise.
// The first trial added fixes the layout (series names and lengths) that
// every later trial must match.
type Accumulator struct {
	names   []string
	rewards [][]float64
	optimal [][]float64
	trials  int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) Trials() int {
	return a.trials
}

func series(r trial.Result) []trial.Metrics {
	ms := make([]trial.Metrics, 0, len(r.Policies)+1)
	ms = append(ms, r.Policies...)
	return append(ms, r.Oracle)
}

func (a *Accumulator) Add(r trial.Result) error {
	ms := series(r)
	if a.trials == 0 {
		a.names = make([]string, len(ms))
		a.rewards = make([][]float64, len(ms))
		a.optimal = make([][]float64, len(ms))
		for i, m := range ms {
			if len(m.Rewards) != len(m.Optimal) {
				return fmt.Errorf("%w: %s has %d rewards and %d optimal flags",
					ErrLayoutMismatch, m.Name, len(m.Rewards), len(m.Optimal))
			}
			a.names[i] = m.Name
			a.rewards[i] = make([]float64, len(m.Rewards))
			a.optimal[i] = make([]float64, len(m.Optimal))
		}
	}

	if err := a.checkLayout(ms); err != nil {
		return err
	}
	for i, m := range ms {
		floats.Add(a.rewards[i], m.Rewards)
		floats.Add(a.optimal[i], m.Optimal)
	}
	a.trials++
	return nil
}

func (a *Accumulator) checkLayout(ms []trial.Metrics) error {
	if len(ms) != len(a.names) {
		return fmt.Errorf("%w: %d series, want %d", ErrLayoutMismatch, len(ms), len(a.names))
	}
	for i, m := range ms {
		if m.Name != a.names[i] {
			return fmt.Errorf("%w: series %d is %q, want %q", ErrLayoutMismatch, i, m.Name, a.names[i])
		}
		if len(m.Rewards) != len(a.rewards[i]) || len(m.Optimal) != len(a.optimal[i]) {
			return fmt.Errorf("%w: %s has %d steps, want %d", ErrLayoutMismatch, m.Name, len(m.Rewards), len(a.rewards[i]))
		}
	}
	return nil
}

// Merge adds every trial summed in b to a.
func (a *Accumulator) Merge(b *Accumulator) error {
	if b.trials == 0 {
		return nil
	}
	if a.trials == 0 {
		a.names = append([]string(nil), b.names...)
		a.rewards = make([][]float64, len(b.rewards))
		a.optimal = make([][]float64, len(b.optimal))
		for i := range b.rewards {
			a.rewards[i] = make([]float64, len(b.rewards[i]))
			a.optimal[i] = make([]float64, len(b.optimal[i]))
		}
	}

	if err := a.checkLayout(b.sums()); err != nil {
		return err
	}
	for i := range a.rewards {
		floats.Add(a.rewards[i], b.rewards[i])
		floats.Add(a.optimal[i], b.optimal[i])
	}
	a.trials += b.trials
	return nil
}

func (a *Accumulator) sums() []trial.Metrics {
	ms := make([]trial.Metrics, len(a.names))
	for i, name := range a.names {
		ms[i] = trial.Metrics{Name: name, Rewards: a.rewards[i], Optimal: a.optimal[i]}
	}
	return ms
}

// Mean divides the sums by the number of trials. The last series is the oracle.
func (a *Accumulator) Mean() (policies []trial.Metrics, oracle trial.Metrics, err error) {
	if a.trials == 0 {
		return nil, trial.Metrics{}, ErrEmptyAccumulator
	}
	scale := 1.0 / float64(a.trials)
	ms := make([]trial.Metrics, len(a.names))
	for i, name := range a.names {
		rewards := floats.ScaleTo(make([]float64, len(a.rewards[i])), scale, a.rewards[i])
		optimal := floats.ScaleTo(make([]float64, len(a.optimal[i])), scale, a.optimal[i])
		ms[i] = trial.Metrics{Name: name, Rewards: rewards, Optimal: optimal}
	}
	last := len(ms) - 1
	return ms[:last], ms[last], nil
}
