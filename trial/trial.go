// Package trial runs one bandit simulation: a set of policies acting on a
// shared environment, step by step, with an optional drift of the true means
// and an optional burn-in window before metrics are recorded.
package trial

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"
	"github.com/sw965/bandit"
	"github.com/sw965/bandit/estimator"
)

// OracleName names the baseline series that always pulls the optimal arm.
const OracleName = "optimal"

var (
	ErrNilEnvironment   = errors.New("Runner: environment is nil")
	ErrNilRng           = errors.New("Runner: rng is nil")
	ErrNoPolicies       = errors.New("Runner: no policies")
	ErrInvalidPolicy    = errors.New("Runner: invalid policy")
	ErrArmCountMismatch = errors.New("Runner: arm count mismatch")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Environment is the part of env.Environment a trial needs.
type Environment interface {
	Arms() int
	SampleReward(arm int, rng *rand.Rand) (float64, error)
	OptimalArm() int
	IsOptimal(arm int) (bool, error)
	Drift(rng *rand.Rand)
}

type Policy struct {
	Name      string
	Estimator estimator.Estimator
}

type Config struct {
	Steps int `validate:"gt=0" yaml:"steps"`
	// BurnIn is the number of leading steps whose metrics are not recorded.
	// Steps are 1-based, so step s is recorded when s > BurnIn.
	BurnIn int `validate:"gte=0,ltfield=Steps" yaml:"burn_in"`
	// Drift perturbs the environment once per step, after every policy and
	// the oracle have acted.
	Drift bool `yaml:"drift"`
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", bandit.ErrConfig, err)
	}
	return nil
}

// Recorded returns the number of steps whose metrics are kept.
func (c Config) Recorded() int {
	return c.Steps - c.BurnIn
}

type Runner struct {
	Env      Environment
	Policies []Policy
	Config   Config
	Rng      *rand.Rand
}

func (r *Runner) Validate() error {
	if err := r.Config.Validate(); err != nil {
		return err
	}
	if r.Env == nil {
		return fmt.Errorf("%w: %w", bandit.ErrConfig, ErrNilEnvironment)
	}
	if r.Rng == nil {
		return fmt.Errorf("%w: %w", bandit.ErrConfig, ErrNilRng)
	}
	if len(r.Policies) == 0 {
		return fmt.Errorf("%w: %w", bandit.ErrConfig, ErrNoPolicies)
	}

	k := r.Env.Arms()
	names := map[string]struct{}{OracleName: {}}
	for i, p := range r.Policies {
		if p.Name == "" {
			return fmt.Errorf("%w: %w: policies[%d] has an empty name", bandit.ErrConfig, ErrInvalidPolicy, i)
		}
		if _, ok := names[p.Name]; ok {
			return fmt.Errorf("%w: %w: duplicate name %q", bandit.ErrConfig, ErrInvalidPolicy, p.Name)
		}
		names[p.Name] = struct{}{}

		if p.Estimator == nil {
			return fmt.Errorf("%w: %w: %q has no estimator", bandit.ErrConfig, ErrInvalidPolicy, p.Name)
		}
		if p.Estimator.Arms() != k {
			return fmt.Errorf("%w: %w: %q has %d arms, environment has %d",
				bandit.ErrConfig, ErrArmCountMismatch, p.Name, p.Estimator.Arms(), k)
		}
	}
	return nil
}

// Run simulates Config.Steps steps. Within a step every policy, in order,
// chooses an arm, draws its own reward and updates its estimator. The oracle
// then samples the optimal arm, and finally the environment drifts if
// Config.Drift is set, so all of them see the same true means in a step.
func (r *Runner) Run() (Result, error) {
	if err := r.Validate(); err != nil {
		return Result{}, err
	}

	n := r.Config.Recorded()
	result := Result{
		Policies: make([]Metrics, len(r.Policies)),
		Oracle:   newMetrics(OracleName, n),
	}
	for i, p := range r.Policies {
		result.Policies[i] = newMetrics(p.Name, n)
	}

	for step := 1; step <= r.Config.Steps; step++ {
		record := step > r.Config.BurnIn
		for i, p := range r.Policies {
			action := p.Estimator.ChooseAction(r.Rng)
			reward, err := r.Env.SampleReward(action, r.Rng)
			if err != nil {
				return Result{}, fmt.Errorf("step %d: %s: %w", step, p.Name, err)
			}

			if err := p.Estimator.Update(action, reward); err != nil {
				return Result{}, fmt.Errorf("step %d: %s: %w", step, p.Name, err)
			}

			if !record {
				continue
			}
			optimal, err := r.Env.IsOptimal(action)
			if err != nil {
				return Result{}, fmt.Errorf("step %d: %s: %w", step, p.Name, err)
			}
			result.Policies[i].add(reward, optimal)
		}

		if record {
			reward, err := r.Env.SampleReward(r.Env.OptimalArm(), r.Rng)
			if err != nil {
				return Result{}, fmt.Errorf("step %d: %s: %w", step, OracleName, err)
			}
			result.Oracle.add(reward, true)
		}

		if r.Config.Drift {
			r.Env.Drift(r.Rng)
		}
	}
	return result, nil
}
