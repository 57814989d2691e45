package randx

import (
	"math/rand/v2"

	"github.com/sw965/omw/mathx/randx"
	"gonum.org/v1/gonum/stat/distuv"
)

// NewTrialRNG returns the generator owned by one trial. The same (seed, trial)
// pair always yields the same stream, independent of which worker runs it.
func NewTrialRNG(seed uint64, trial int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(trial)))
}

// NewSeed draws a fresh seed for runs that did not ask for one.
func NewSeed() uint64 {
	return randx.NewPCGFromGlobalSeed().Uint64()
}

func Normal(mu, sigma float64, rng *rand.Rand) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: rng}.Rand()
}

func Bernoulli(p float64, rng *rand.Rand) bool {
	return rng.Float64() < p
}
