// Package estimator implements the action-value estimators of a k-armed bandit.
//
// Every estimator keeps one value estimate per arm, picks an arm with
// ChooseAction and moves the chosen arm's estimate toward the observed reward
// with Update. The three variants differ only in the update rule and in how
// they trade exploration against exploitation.
package estimator

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sw965/bandit"
	"github.com/sw965/bandit/mathx"
	"github.com/sw965/bandit/mathx/randx"
)

const DefaultOptimisticValue = 10.0

var validate = validator.New(validator.WithRequiredStructEnabled())

type Estimator interface {
	Arms() int
	ChooseAction(rng *rand.Rand) int
	Update(arm int, reward float64) error
	// Estimates returns a copy of the current value estimates.
	Estimates() []float64
	Kind() Kind
}

type Kind int

const (
	SampleAverageKind Kind = iota
	ConstantStepKind
	UCBKind
)

var kindNames = map[Kind]string{
	SampleAverageKind: "sample-average",
	ConstantStepKind:  "constant-step",
	UCBKind:           "ucb",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown estimator kind %q", bandit.ErrConfig, s)
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Config holds the construction parameters of every variant. Every field is
// range checked, but a variant ignores the fields it does not use: Epsilon
// by UCB, StepSize by SampleAverage, C by everything but UCB.
type Config struct {
	Arms     int     `validate:"gt=0"`
	Epsilon  float64 `validate:"gte=0,lte=1"`
	StepSize float64 `validate:"gte=0"`
	C        float64 `validate:"gte=0"`

	// Optimistic starts every estimate at OptimisticValue instead of 0,
	// or at DefaultOptimisticValue when OptimisticValue is 0.
	Optimistic      bool
	OptimisticValue float64
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", bandit.ErrConfig, err)
	}
	if c.Optimistic && !mathx.IsFinite(c.OptimisticValue) {
		return fmt.Errorf("%w: optimistic value must be finite, got %v", bandit.ErrConfig, c.OptimisticValue)
	}
	return nil
}

func (c Config) validateStepSize() error {
	if err := validate.Var(c.StepSize, "gt=0"); err != nil {
		return fmt.Errorf("%w: step size must be positive, got %v", bandit.ErrConfig, c.StepSize)
	}
	return nil
}

func (c Config) initialEstimates() []float64 {
	estimates := make([]float64, c.Arms)
	if !c.Optimistic {
		return estimates
	}
	v := c.OptimisticValue
	if v == 0 {
		v = DefaultOptimisticValue
	}
	for i := range estimates {
		estimates[i] = v
	}
	return estimates
}

func New(kind Kind, cfg Config) (Estimator, error) {
	switch kind {
	case SampleAverageKind:
		return NewSampleAverage(cfg)
	case ConstantStepKind:
		return NewConstantStep(cfg)
	case UCBKind:
		return NewUCB(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown estimator kind %v", bandit.ErrConfig, kind)
	}
}

// epsilonGreedy explores a uniformly random arm with probability epsilon
// and otherwise exploits the greedy arm, the lowest index among ties.
func epsilonGreedy(estimates []float64, epsilon float64, rng *rand.Rand) int {
	if randx.Bernoulli(epsilon, rng) {
		return rng.IntN(len(estimates))
	}
	return mathx.Argmax(estimates)
}
