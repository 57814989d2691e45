package experiment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/bandit/experiment"
	"github.com/sw965/bandit/trial"
)

func makeResult(rewards, optimal, oracle []float64) trial.Result {
	ones := make([]float64, len(oracle))
	for i := range ones {
		ones[i] = 1
	}
	return trial.Result{
		Policies: []trial.Metrics{{Name: "p", Rewards: rewards, Optimal: optimal}},
		Oracle:   trial.Metrics{Name: trial.OracleName, Rewards: oracle, Optimal: ones},
	}
}

func TestAccumulatorMean(t *testing.T) {
	acc := experiment.NewAccumulator()
	require.NoError(t, acc.Add(makeResult([]float64{1, 0}, []float64{1, 0}, []float64{2, 2})))
	require.NoError(t, acc.Add(makeResult([]float64{0, 1}, []float64{1, 1}, []float64{4, 0})))
	assert.Equal(t, 2, acc.Trials())

	policies, oracle, err := acc.Mean()
	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.Equal(t, "p", policies[0].Name)
	assert.Equal(t, []float64{0.5, 0.5}, policies[0].Rewards)
	assert.Equal(t, []float64{1, 0.5}, policies[0].Optimal)
	assert.Equal(t, []float64{3, 1}, oracle.Rewards)
	assert.Equal(t, []float64{1, 1}, oracle.Optimal)
}

func TestAccumulatorDoesNotAliasInputs(t *testing.T) {
	rewards := []float64{1, 2}
	acc := experiment.NewAccumulator()
	require.NoError(t, acc.Add(makeResult(rewards, []float64{0, 0}, []float64{0, 0})))
	require.NoError(t, acc.Add(makeResult([]float64{1, 2}, []float64{0, 0}, []float64{0, 0})))
	assert.Equal(t, []float64{1, 2}, rewards)
}

func TestAccumulatorEmpty(t *testing.T) {
	_, _, err := experiment.NewAccumulator().Mean()
	assert.ErrorIs(t, err, experiment.ErrEmptyAccumulator)
}

func TestAccumulatorLayoutMismatch(t *testing.T) {
	base := makeResult([]float64{1, 0}, []float64{1, 0}, []float64{2, 2})

	renamed := makeResult([]float64{1, 0}, []float64{1, 0}, []float64{2, 2})
	renamed.Policies[0].Name = "q"

	tests := []struct {
		name  string
		other trial.Result
	}{
		{name: "shorter", other: makeResult([]float64{1}, []float64{1}, []float64{2})},
		{name: "renamed", other: renamed},
		{name: "extra_policy", other: trial.Result{
			Policies: []trial.Metrics{base.Policies[0], base.Policies[0]},
			Oracle:   base.Oracle,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			acc := experiment.NewAccumulator()
			require.NoError(t, acc.Add(base))
			err := acc.Add(tc.other)
			assert.ErrorIs(t, err, experiment.ErrLayoutMismatch)
			assert.Equal(t, 1, acc.Trials())
		})
	}

	ragged := makeResult([]float64{1, 0}, []float64{1}, []float64{2, 2})
	assert.ErrorIs(t, experiment.NewAccumulator().Add(ragged), experiment.ErrLayoutMismatch)
}

func TestAccumulatorMerge(t *testing.T) {
	a := experiment.NewAccumulator()
	b := experiment.NewAccumulator()
	require.NoError(t, a.Add(makeResult([]float64{1, 0}, []float64{1, 0}, []float64{2, 2})))
	require.NoError(t, b.Add(makeResult([]float64{0, 1}, []float64{1, 1}, []float64{4, 0})))
	require.NoError(t, b.Add(makeResult([]float64{2, 2}, []float64{1, 1}, []float64{0, 1})))

	empty := experiment.NewAccumulator()
	require.NoError(t, empty.Merge(experiment.NewAccumulator()))
	require.NoError(t, empty.Merge(a))
	require.NoError(t, empty.Merge(b))
	assert.Equal(t, 3, empty.Trials())

	policies, oracle, err := empty.Mean()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, policies[0].Rewards)
	assert.Equal(t, []float64{2, 1}, oracle.Rewards)

	mismatched := experiment.NewAccumulator()
	require.NoError(t, mismatched.Add(makeResult([]float64{1}, []float64{1}, []float64{1})))
	assert.ErrorIs(t, a.Merge(mismatched), experiment.ErrLayoutMismatch)
}
