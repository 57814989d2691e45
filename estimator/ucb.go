package estimator

import (
	"math/rand/v2"
	"slices"

	"github.com/sw965/bandit"
	"github.com/sw965/bandit/ucb"
)

// UCB selects the arm with the highest upper confidence bound and updates
// with a constant step size.
type UCB struct {
	estimates []float64
	visits    []int
	stepSize  float64
	score     ucb.Func
	// step is the number of updates so far; ChooseAction scores at step+1.
	step int
}

func NewUCB(cfg Config) (*UCB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.validateStepSize(); err != nil {
		return nil, err
	}
	return &UCB{
		estimates: cfg.initialEstimates(),
		visits:    make([]int, cfg.Arms),
		stepSize:  cfg.StepSize,
		score:     ucb.NewStandardFunc(cfg.C),
	}, nil
}

func (u *UCB) Arms() int {
	return len(u.estimates)
}

func (u *UCB) Kind() Kind {
	return UCBKind
}

// ChooseAction is deterministic; rng is accepted to satisfy Estimator.
func (u *UCB) ChooseAction(_ *rand.Rand) int {
	return ucb.Select(u.score, u.estimates, u.visits, u.step+1)
}

func (u *UCB) Update(arm int, reward float64) error {
	if err := bandit.CheckArm(arm, len(u.estimates)); err != nil {
		return err
	}
	u.estimates[arm] += u.stepSize * (reward - u.estimates[arm])
	u.visits[arm]++
	u.step++
	return nil
}

func (u *UCB) Estimates() []float64 {
	return slices.Clone(u.estimates)
}

func (u *UCB) Visits() []int {
	return slices.Clone(u.visits)
}
