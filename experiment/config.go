package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/sw965/bandit"
	"github.com/sw965/bandit/env"
	"github.com/sw965/bandit/estimator"
	"github.com/sw965/bandit/mathx/randx"
	"github.com/sw965/bandit/trial"
	"gopkg.in/yaml.v3"
)

// Names of the estimator parameters a sweep value can set.
const (
	SweepEpsilon  = "epsilon"
	SweepStepSize = "step_size"
	SweepC        = "c"
)

// sweepTargets lists the parameters each estimator kind reads.
var sweepTargets = map[estimator.Kind][]string{
	estimator.SampleAverageKind: {SweepEpsilon},
	estimator.ConstantStepKind:  {SweepEpsilon, SweepStepSize},
	estimator.UCBKind:           {SweepStepSize, SweepC},
}

// PolicyConfig describes one estimator. When Sweep is set, the sweep value
// replaces the named parameter. A swept epsilon above 1 is capped at 1
// (always explore), so epsilon and c policies can share values past 1.
type PolicyConfig struct {
	Name            string         `yaml:"name" validate:"required,ne=optimal"`
	Kind            estimator.Kind `yaml:"kind"`
	Epsilon         float64        `yaml:"epsilon"`
	StepSize        float64        `yaml:"step_size"`
	C               float64        `yaml:"c"`
	Optimistic      bool           `yaml:"optimistic"`
	OptimisticValue float64        `yaml:"optimistic_value"`
	Sweep           string         `yaml:"sweep" validate:"omitempty,oneof=epsilon step_size c"`
}

func (p PolicyConfig) estimatorConfig(arms int, value float64) estimator.Config {
	cfg := estimator.Config{
		Arms:            arms,
		Epsilon:         p.Epsilon,
		StepSize:        p.StepSize,
		C:               p.C,
		Optimistic:      p.Optimistic,
		OptimisticValue: p.OptimisticValue,
	}
	switch p.Sweep {
	case SweepEpsilon:
		cfg.Epsilon = min(value, 1)
	case SweepStepSize:
		cfg.StepSize = value
	case SweepC:
		cfg.C = value
	}
	return cfg
}

// Config describes a complete sweep: the environment, the trial shape, the
// policies under comparison and the values swept over.
type Config struct {
	Arms             int          `yaml:"arms" validate:"gt=0"`
	Trials           int          `yaml:"trials" validate:"gt=0"`
	Parallelism      int          `yaml:"parallelism" validate:"gte=0"`
	SweepParallelism int          `yaml:"sweep_parallelism" validate:"gte=0"`
	Seed             uint64       `yaml:"seed"`
	Trial            trial.Config `yaml:"trial"`
	// InitialMeans is shared by every trial. Leave it empty for all-zero
	// means, or set RandomInitialMeans to draw one Normal(0, 1) vector
	// from Seed.
	InitialMeans       []float64      `yaml:"initial_means"`
	RandomInitialMeans bool           `yaml:"random_initial_means"`
	Values             []float64      `yaml:"values" validate:"min=1"`
	Policies           []PolicyConfig `yaml:"policies" validate:"min=1,dive"`
}

// DefaultConfig is the non-stationary epsilon / c sweep: ten drifting arms
// starting from one shared random mean vector, 200000 steps of which the
// last 100000 are recorded.
func DefaultConfig() Config {
	return Config{
		Arms:   10,
		Trials: 1000,
		Trial: trial.Config{
			Steps:  200000,
			BurnIn: 100000,
			Drift:  true,
		},
		RandomInitialMeans: true,
		Values:             []float64{1.0 / 128, 1.0 / 64, 1.0 / 32, 1.0 / 16, 1.0 / 8, 1.0 / 4, 1.0 / 2, 1, 2, 4},
		Policies: []PolicyConfig{
			{Name: "sample-average", Kind: estimator.SampleAverageKind, Sweep: SweepEpsilon},
			{Name: "constant-step", Kind: estimator.ConstantStepKind, StepSize: 0.01, Sweep: SweepEpsilon},
			{Name: "ucb", Kind: estimator.UCBKind, StepSize: 0.01, Sweep: SweepC},
		},
	}
}

// LoadConfig reads a YAML document on top of DefaultConfig. Unknown keys are
// rejected. An empty document yields DefaultConfig. A document that sets
// initial_means without random_initial_means turns the random means off.
func LoadConfig(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", bandit.ErrConfig, err)
	}

	var explicit struct {
		RandomInitialMeans *bool `yaml:"random_initial_means"`
	}
	if err := yaml.Unmarshal(data, &explicit); err != nil {
		return Config{}, fmt.Errorf("%w: %v", bandit.ErrConfig, err)
	}
	if len(cfg.InitialMeans) != 0 && explicit.RandomInitialMeans == nil {
		cfg.RandomInitialMeans = false
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config and builds every policy once for each sweep
// value, so estimator errors surface before any trial runs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", bandit.ErrConfig, err)
	}
	if len(c.InitialMeans) != 0 {
		if len(c.InitialMeans) != c.Arms {
			return fmt.Errorf("%w: %d initial means for %d arms", bandit.ErrConfig, len(c.InitialMeans), c.Arms)
		}
		if c.RandomInitialMeans {
			return fmt.Errorf("%w: initial_means and random_initial_means are exclusive", bandit.ErrConfig)
		}
		if _, err := env.NewWithMeans(c.InitialMeans); err != nil {
			return err
		}
	}

	names := map[string]struct{}{}
	for _, p := range c.Policies {
		if _, ok := names[p.Name]; ok {
			return fmt.Errorf("%w: duplicate policy name %q", bandit.ErrConfig, p.Name)
		}
		names[p.Name] = struct{}{}
		if p.Sweep != "" && !slices.Contains(sweepTargets[p.Kind], p.Sweep) {
			return fmt.Errorf("%w: policy %q: %v does not use %s", bandit.ErrConfig, p.Name, p.Kind, p.Sweep)
		}
		for _, v := range c.Values {
			if _, err := estimator.New(p.Kind, p.estimatorConfig(c.Arms, v)); err != nil {
				return fmt.Errorf("policy %q, value %v: %w", p.Name, v, err)
			}
		}
	}
	return nil
}

func (c Config) initialMeans() ([]float64, error) {
	if c.RandomInitialMeans {
		return env.RandomMeans(c.Arms, randx.NewTrialRNG(c.Seed, -1))
	}
	return c.InitialMeans, nil
}

// NewSweep validates c and builds the sweep it describes. The seed is fixed
// here, so the shared random initial means and the trials agree on it.
func (c Config) NewSweep(logger *slog.Logger, metrics *Metrics) (*Sweep, error) {
	if c.Seed == 0 {
		c.Seed = randx.NewSeed()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	means, err := c.initialMeans()
	if err != nil {
		return nil, err
	}

	factory := func(value float64) TrialFactory {
		return func(_ int, rng *rand.Rand) (*trial.Runner, error) {
			var e *env.Environment
			var err error
			if len(means) == 0 {
				e, err = env.New(c.Arms)
			} else {
				e, err = env.NewWithMeans(means)
			}
			if err != nil {
				return nil, err
			}

			policies := make([]trial.Policy, len(c.Policies))
			for i, p := range c.Policies {
				est, err := estimator.New(p.Kind, p.estimatorConfig(c.Arms, value))
				if err != nil {
					return nil, err
				}
				policies[i] = trial.Policy{Name: p.Name, Estimator: est}
			}
			return &trial.Runner{Env: e, Policies: policies, Config: c.Trial, Rng: rng}, nil
		}
	}

	return &Sweep{
		Values: append([]float64(nil), c.Values...),
		Aggregator: Aggregator{
			Trials:      c.Trials,
			Parallelism: c.Parallelism,
			Seed:        c.Seed,
			Logger:      logger,
			Metrics:     metrics,
		},
		Parallelism: c.SweepParallelism,
		Factory:     factory,
	}, nil
}
