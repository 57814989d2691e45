package estimator

import (
	"math/rand/v2"
	"slices"

	"github.com/sw965/bandit"
)

// ConstantStep is an exponential recency-weighted average. Unlike
// SampleAverage its step size does not decay, so it keeps tracking arms
// whose true means drift.
type ConstantStep struct {
	estimates []float64
	epsilon   float64
	stepSize  float64
}

func NewConstantStep(cfg Config) (*ConstantStep, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.validateStepSize(); err != nil {
		return nil, err
	}
	return &ConstantStep{
		estimates: cfg.initialEstimates(),
		epsilon:   cfg.Epsilon,
		stepSize:  cfg.StepSize,
	}, nil
}

func (c *ConstantStep) Arms() int {
	return len(c.estimates)
}

func (c *ConstantStep) Kind() Kind {
	return ConstantStepKind
}

func (c *ConstantStep) ChooseAction(rng *rand.Rand) int {
	return epsilonGreedy(c.estimates, c.epsilon, rng)
}

func (c *ConstantStep) Update(arm int, reward float64) error {
	if err := bandit.CheckArm(arm, len(c.estimates)); err != nil {
		return err
	}
	c.estimates[arm] += c.stepSize * (reward - c.estimates[arm])
	return nil
}

func (c *ConstantStep) Estimates() []float64 {
	return slices.Clone(c.estimates)
}
