package experiment_test

import (
	"math/rand/v2"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/bandit"
	"github.com/sw965/bandit/experiment"
	"github.com/sw965/bandit/trial"
)

func TestSweepRun(t *testing.T) {
	means := []float64{0.3, -0.2, 0.9, 0.0, 0.5}
	values := []float64{0.05, 0.2, 0.5}

	run := func(p int) experiment.SweepResult {
		s := experiment.Sweep{
			Values:      values,
			Aggregator:  experiment.Aggregator{Trials: 6, Parallelism: 2, Seed: 4},
			Parallelism: p,
			Factory: func(v float64) experiment.TrialFactory {
				return testbedFactory(t, means, v)
			},
		}
		result, err := s.Run()
		require.NoError(t, err)
		return result
	}

	serial := run(0)
	concurrent := run(3)
	require.Len(t, serial.Results, len(values))
	assert.Equal(t, values, serial.Values)
	assert.Equal(t, uint64(4), serial.Seed)

	for i := range values {
		assert.Equal(t, serial.Results[i].Policies, concurrent.Results[i].Policies)
		assert.Equal(t, uint64(4), serial.Results[i].Seed)
	}

	tail, err := serial.TailRewards("constant-step")
	require.NoError(t, err)
	require.Len(t, tail, len(values))
	for i, r := range serial.Results {
		m, ok := r.Metrics("constant-step")
		require.True(t, ok)
		assert.Equal(t, m.MeanReward(), tail[i])
	}

	oracle, err := serial.TailRewards(trial.OracleName)
	require.NoError(t, err)
	assert.Len(t, oracle, len(values))

	_, err = serial.TailRewards("missing")
	assert.Error(t, err)
}

func TestSweepErrors(t *testing.T) {
	factory := func(float64) experiment.TrialFactory {
		return func(_ int, _ *rand.Rand) (*trial.Runner, error) {
			return scriptedRunner(t, []float64{1, 1}, 1), nil
		}
	}
	tests := []struct {
		name  string
		sweep experiment.Sweep
	}{
		{name: "no_values", sweep: experiment.Sweep{Aggregator: experiment.Aggregator{Trials: 1}, Factory: factory}},
		{name: "nil_factory", sweep: experiment.Sweep{Values: []float64{1}, Aggregator: experiment.Aggregator{Trials: 1}}},
		{name: "negative_parallelism", sweep: experiment.Sweep{Values: []float64{1}, Parallelism: -1, Aggregator: experiment.Aggregator{Trials: 1}, Factory: factory}},
		{name: "bad_aggregator", sweep: experiment.Sweep{Values: []float64{1}, Factory: factory}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.sweep.Run()
			assert.ErrorIs(t, err, bandit.ErrConfig)
		})
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := experiment.NewMetrics(reg)
	require.NoError(t, err)

	s := experiment.Sweep{
		Values:     []float64{0.5},
		Aggregator: experiment.Aggregator{Trials: 4, Seed: 1, Metrics: m},
		Factory: func(float64) experiment.TrialFactory {
			return func(_ int, _ *rand.Rand) (*trial.Runner, error) {
				return scriptedRunner(t, []float64{1, 2, 3, 2}, 2), nil
			}
		},
	}
	_, err = s.Run()
	require.NoError(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.TrialsCompleted))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.StepsSimulated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TailReward.WithLabelValues("cs", "0.5")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TailReward.WithLabelValues(trial.OracleName, "0.5")))

	_, err = experiment.NewMetrics(reg)
	assert.Error(t, err)
}
