package experiment

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sw965/bandit"
	"github.com/sw965/bandit/mathx/randx"
	"golang.org/x/sync/errgroup"
)

// Sweep aggregates one experiment per hyperparameter value.
type Sweep struct {
	Values []float64
	// Aggregator is copied for every value. All values share one seed, so
	// they are compared on the same random streams.
	Aggregator Aggregator
	// Parallelism bounds the number of values aggregated at once; 0 runs
	// them one after another.
	Parallelism int
	// Factory returns the trial factory for one value.
	Factory func(value float64) TrialFactory
}

type SweepResult struct {
	RunID   string
	Seed    uint64
	Values  []float64
	Results []Result
}

// TailRewards returns, for each value in order, the mean recorded reward of
// the series called name.
func (r SweepResult) TailRewards(name string) ([]float64, error) {
	ys := make([]float64, len(r.Results))
	for i, result := range r.Results {
		m, ok := result.Metrics(name)
		if !ok {
			return nil, fmt.Errorf("series %q not found for value %v", name, r.Values[i])
		}
		ys[i] = m.MeanReward()
	}
	return ys, nil
}

func (s *Sweep) Run() (SweepResult, error) {
	if len(s.Values) == 0 {
		return SweepResult{}, fmt.Errorf("%w: sweep has no values", bandit.ErrConfig)
	}
	if s.Factory == nil {
		return SweepResult{}, fmt.Errorf("%w: sweep factory is nil", bandit.ErrConfig)
	}
	if s.Parallelism < 0 {
		return SweepResult{}, fmt.Errorf("%w: sweep parallelism must not be negative, got %d", bandit.ErrConfig, s.Parallelism)
	}

	seed := s.Aggregator.Seed
	if seed == 0 {
		seed = randx.NewSeed()
	}
	runID := uuid.NewString()
	log := s.Aggregator.logger().With("sweep_id", runID)
	log.Info("sweep started", "values", s.Values, "seed", seed)

	results := make([]Result, len(s.Values))
	var g errgroup.Group
	g.SetLimit(max(s.Parallelism, 1))
	for i, value := range s.Values {
		g.Go(func() error {
			agg := s.Aggregator
			agg.Seed = seed
			agg.Logger = log.With("value", value)

			result, err := agg.Aggregate(s.Factory(value))
			if err != nil {
				return fmt.Errorf("value %v: %w", value, err)
			}
			for name, reward := range result.TailRewards() {
				agg.Metrics.observeTailReward(name, value, reward)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("sweep failed", slog.Any("error", err))
		return SweepResult{}, err
	}

	log.Info("sweep finished")
	return SweepResult{
		RunID:   runID,
		Seed:    seed,
		Values:  append([]float64(nil), s.Values...),
		Results: results,
	}, nil
}
