// Package bandit holds the error taxonomy shared by the k-armed bandit packages.
//
// Subpackages:
//
//	env        reward environment (true arm means, Gaussian rewards, drift)
//	estimator  value estimators (sample-average, constant step size, UCB)
//	trial      one simulation run over a shared environment
//	experiment multi-trial aggregation and hyperparameter sweeps
package bandit

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned for invalid construction parameters.
	ErrConfig = errors.New("config error")

	// ErrArmOutOfRange is returned when an arm index is outside [0, k).
	ErrArmOutOfRange = errors.New("arm index out of range")
)

// CheckArm returns ErrArmOutOfRange unless 0 <= arm < k.
func CheckArm(arm, k int) error {
	if arm < 0 || arm >= k {
		return fmt.Errorf("%w: arm = %d, k = %d", ErrArmOutOfRange, arm, k)
	}
	return nil
}

// CheckArms returns ErrConfig unless k is positive.
func CheckArms(k int) error {
	if k <= 0 {
		return fmt.Errorf("%w: number of arms must be positive, got %d", ErrConfig, k)
	}
	return nil
}
