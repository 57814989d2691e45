// Package env provides the reward environment of a k-armed bandit.
package env

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/sw965/bandit"
	"github.com/sw965/bandit/mathx"
	"github.com/sw965/bandit/mathx/randx"
)

const (
	RewardStd = 1.0
	DriftStd  = 0.01
)

// Environment owns the true mean reward of each arm.
// The number of arms never changes after construction.
type Environment struct {
	means []float64
}

func New(k int) (*Environment, error) {
	if err := bandit.CheckArms(k); err != nil {
		return nil, err
	}
	return &Environment{means: make([]float64, k)}, nil
}

// NewWithMeans copies means, so the caller may keep reusing its slice
// (typically one vector shared by every trial of an experiment).
func NewWithMeans(means []float64) (*Environment, error) {
	if err := bandit.CheckArms(len(means)); err != nil {
		return nil, err
	}
	for i, m := range means {
		if !mathx.IsFinite(m) {
			return nil, fmt.Errorf("%w: means[%d] = %v is not finite", bandit.ErrConfig, i, m)
		}
	}
	return &Environment{means: slices.Clone(means)}, nil
}

// RandomMeans draws k means from the standard normal distribution.
func RandomMeans(k int, rng *rand.Rand) ([]float64, error) {
	if err := bandit.CheckArms(k); err != nil {
		return nil, err
	}
	means := make([]float64, k)
	for i := range means {
		means[i] = randx.Normal(0.0, 1.0, rng)
	}
	return means, nil
}

func (e *Environment) Arms() int {
	return len(e.means)
}

func (e *Environment) Means() []float64 {
	return slices.Clone(e.means)
}

func (e *Environment) SampleReward(arm int, rng *rand.Rand) (float64, error) {
	if err := bandit.CheckArm(arm, len(e.means)); err != nil {
		return 0.0, err
	}
	return randx.Normal(e.means[arm], RewardStd, rng), nil
}

// Drift moves every mean by an independent Normal(0, DriftStd) step.
func (e *Environment) Drift(rng *rand.Rand) {
	for i := range e.means {
		e.means[i] += randx.Normal(0.0, DriftStd, rng)
	}
}

func (e *Environment) OptimalArm() int {
	return mathx.Argmax(e.means)
}

// IsOptimal reports whether arm's true mean equals the best true mean.
// Arms tied with OptimalArm count as optimal.
func (e *Environment) IsOptimal(arm int) (bool, error) {
	if err := bandit.CheckArm(arm, len(e.means)); err != nil {
		return false, err
	}
	return mathx.IsMax(e.means, arm), nil
}
