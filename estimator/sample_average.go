package estimator

import (
	"math/rand/v2"
	"slices"

	"github.com/sw965/bandit"
)

// SampleAverage estimates each arm by the exact mean of its observed rewards.
type SampleAverage struct {
	estimates []float64
	visits    []int
	epsilon   float64
}

func NewSampleAverage(cfg Config) (*SampleAverage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SampleAverage{
		estimates: cfg.initialEstimates(),
		visits:    make([]int, cfg.Arms),
		epsilon:   cfg.Epsilon,
	}, nil
}

func (s *SampleAverage) Arms() int {
	return len(s.estimates)
}

func (s *SampleAverage) Kind() Kind {
	return SampleAverageKind
}

func (s *SampleAverage) ChooseAction(rng *rand.Rand) int {
	return epsilonGreedy(s.estimates, s.epsilon, rng)
}

func (s *SampleAverage) Update(arm int, reward float64) error {
	if err := bandit.CheckArm(arm, len(s.estimates)); err != nil {
		return err
	}
	s.visits[arm]++
	s.estimates[arm] += (reward - s.estimates[arm]) / float64(s.visits[arm])
	return nil
}

func (s *SampleAverage) Estimates() []float64 {
	return slices.Clone(s.estimates)
}

func (s *SampleAverage) Visits() []int {
	return slices.Clone(s.visits)
}
