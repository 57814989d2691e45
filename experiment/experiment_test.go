package experiment_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sw965/bandit"
	"github.com/sw965/bandit/env"
	"github.com/sw965/bandit/estimator"
	"github.com/sw965/bandit/trial"
)

// scriptedEnv hands out rewards from a fixed queue, in call order.
type scriptedEnv struct {
	arms    int
	rewards []float64
}

func (s *scriptedEnv) Arms() int { return s.arms }

func (s *scriptedEnv) SampleReward(arm int, _ *rand.Rand) (float64, error) {
	if err := bandit.CheckArm(arm, s.arms); err != nil {
		return 0, err
	}
	if len(s.rewards) == 0 {
		return 0, errors.New("script exhausted")
	}
	r := s.rewards[0]
	s.rewards = s.rewards[1:]
	return r, nil
}

func (s *scriptedEnv) OptimalArm() int { return 0 }

func (s *scriptedEnv) IsOptimal(arm int) (bool, error) { return arm == 0, nil }

func (s *scriptedEnv) Drift(_ *rand.Rand) {}

func scriptedRunner(t *testing.T, rewards []float64, steps int) *trial.Runner {
	t.Helper()
	cs, err := estimator.NewConstantStep(estimator.Config{Arms: 2, StepSize: 0.1})
	require.NoError(t, err)
	return &trial.Runner{
		Env:      &scriptedEnv{arms: 2, rewards: rewards},
		Policies: []trial.Policy{{Name: "cs", Estimator: cs}},
		Config:   trial.Config{Steps: steps},
	}
}

// testbedFactory builds a drifting 5-armed testbed shared by every trial.
func testbedFactory(t *testing.T, means []float64, epsilon float64) func(int, *rand.Rand) (*trial.Runner, error) {
	t.Helper()
	return func(_ int, rng *rand.Rand) (*trial.Runner, error) {
		e, err := env.NewWithMeans(means)
		if err != nil {
			return nil, err
		}
		sa, err := estimator.NewSampleAverage(estimator.Config{Arms: len(means), Epsilon: epsilon})
		if err != nil {
			return nil, err
		}
		cs, err := estimator.NewConstantStep(estimator.Config{Arms: len(means), Epsilon: epsilon, StepSize: 0.1})
		if err != nil {
			return nil, err
		}
		return &trial.Runner{
			Env: e,
			Policies: []trial.Policy{
				{Name: "sample-average", Estimator: sa},
				{Name: "constant-step", Estimator: cs},
			},
			Config: trial.Config{Steps: 300, BurnIn: 100, Drift: true},
			Rng:    rng,
		}, nil
	}
}
