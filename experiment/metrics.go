package experiment

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bandit"

// Metrics exposes progress of long running aggregates and sweeps.
type Metrics struct {
	TrialsCompleted prometheus.Counter
	StepsSimulated  prometheus.Counter
	TailReward      *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		TrialsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_completed_total",
			Help:      "Number of finished trials.",
		}),
		StepsSimulated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_simulated_total",
			Help:      "Number of simulated steps over all trials.",
		}),
		TailReward: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tail_reward",
			Help:      "Mean recorded reward of a policy for one sweep value.",
		}, []string{"policy", "value"}),
	}

	for _, c := range []prometheus.Collector{m.TrialsCompleted, m.StepsSimulated, m.TailReward} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeTrial(steps int) {
	if m == nil {
		return
	}
	m.TrialsCompleted.Inc()
	m.StepsSimulated.Add(float64(steps))
}

func (m *Metrics) observeTailReward(policy string, value, reward float64) {
	if m == nil {
		return
	}
	m.TailReward.WithLabelValues(policy, formatValue(value)).Set(reward)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
