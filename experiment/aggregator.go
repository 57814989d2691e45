// Package experiment runs many independent bandit trials and reduces them to
// mean learning curves, optionally across a sweep of hyperparameter values.
package experiment

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sw965/bandit"
	"github.com/sw965/bandit/mathx/randx"
	"github.com/sw965/bandit/trial"
	"github.com/sw965/omw/parallel"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TrialFactory builds the runner of one trial: a fresh environment and fresh
// estimators. rng is the trial's own generator; a runner returned without an
// Rng gets it assigned.
type TrialFactory func(trialIdx int, rng *rand.Rand) (*trial.Runner, error)

type Aggregator struct {
	Trials int `validate:"gt=0"`
	// Parallelism is the number of workers; 0 means GOMAXPROCS.
	Parallelism int `validate:"gte=0"`
	// Seed derives every trial's generator. 0 draws a random seed, which is
	// reported in Result.Seed.
	Seed    uint64
	Logger  *slog.Logger `validate:"-"`
	Metrics *Metrics     `validate:"-"`
}

// Result holds the mean over all trials of every recorded series.
type Result struct {
	RunID    string
	Seed     uint64
	Trials   int
	Policies []trial.Metrics
	Oracle   trial.Metrics
}

// Metrics returns the mean series recorded under name, the oracle included.
func (r Result) Metrics(name string) (trial.Metrics, bool) {
	return trial.Result{Policies: r.Policies, Oracle: r.Oracle}.Metrics(name)
}

// TailRewards maps every series name to its mean recorded reward.
func (r Result) TailRewards() map[string]float64 {
	m := make(map[string]float64, len(r.Policies)+1)
	for _, p := range r.Policies {
		m[p.Name] = p.MeanReward()
	}
	m[r.Oracle.Name] = r.Oracle.MeanReward()
	return m
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *Aggregator) workers() int {
	p := a.Parallelism
	if p == 0 {
		p = runtime.GOMAXPROCS(0)
	}
	return min(p, a.Trials)
}

// Aggregate runs Trials independent trials and averages their metrics.
//
// Trial i always uses randx.NewTrialRNG(Seed, i). Trials are split into
// contiguous chunks, one accumulator per chunk, and chunks are merged in
// order, so a fixed (Seed, Trials, Parallelism) gives bit-identical results
// however the workers are scheduled.
func (a *Aggregator) Aggregate(factory TrialFactory) (Result, error) {
	if err := validate.Struct(a); err != nil {
		return Result{}, fmt.Errorf("%w: %v", bandit.ErrConfig, err)
	}
	if factory == nil {
		return Result{}, fmt.Errorf("%w: trial factory is nil", bandit.ErrConfig)
	}

	seed := a.Seed
	if seed == 0 {
		seed = randx.NewSeed()
	}
	runID := uuid.NewString()
	p := a.workers()
	log := a.logger().With("run_id", runID)
	log.Info("aggregate started", "trials", a.Trials, "workers", p, "seed", seed)
	start := time.Now()

	accs := make([]*Accumulator, p)
	err := parallel.For(p, p, func(_, chunk int) error {
		acc := NewAccumulator()
		accs[chunk] = acc
		lo, hi := chunk*a.Trials/p, (chunk+1)*a.Trials/p
		for idx := lo; idx < hi; idx++ {
			result, err := a.runTrial(factory, seed, idx)
			if err != nil {
				return err
			}
			if err := acc.Add(result); err != nil {
				return fmt.Errorf("trial %d: %w", idx, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("aggregate failed", "error", err)
		return Result{}, err
	}

	total := NewAccumulator()
	for _, acc := range accs {
		if err := total.Merge(acc); err != nil {
			return Result{}, err
		}
	}
	policies, oracle, err := total.Mean()
	if err != nil {
		return Result{}, err
	}

	result := Result{
		RunID:    runID,
		Seed:     seed,
		Trials:   total.Trials(),
		Policies: policies,
		Oracle:   oracle,
	}
	log.Info("aggregate finished", "elapsed", time.Since(start), "tail_rewards", result.TailRewards())
	return result, nil
}

func (a *Aggregator) runTrial(factory TrialFactory, seed uint64, idx int) (trial.Result, error) {
	rng := randx.NewTrialRNG(seed, idx)
	runner, err := factory(idx, rng)
	if err != nil {
		return trial.Result{}, fmt.Errorf("trial %d: %w", idx, err)
	}
	if runner == nil {
		return trial.Result{}, fmt.Errorf("%w: trial %d: factory returned a nil runner", bandit.ErrConfig, idx)
	}
	if runner.Rng == nil {
		runner.Rng = rng
	}

	result, err := runner.Run()
	if err != nil {
		return trial.Result{}, fmt.Errorf("trial %d: %w", idx, err)
	}
	a.Metrics.observeTrial(runner.Config.Steps)
	return result, nil
}
