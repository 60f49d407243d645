package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var redemptionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "code_redemptions_total",
		Help: "Activation code redemption attempts by result.",
	},
	[]string{"result"}, // 'granted', 'not_found', 'expired', 'invalid', 'error'
)

var codesGeneratedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "codes_generated_total",
		Help: "Activation codes issued by admins.",
	},
)

func init() {
	register(redemptionsTotal, codesGeneratedTotal)
}

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(result).Inc()
}

func AddCodesGenerated(n int) {
	codesGeneratedTotal.Add(float64(n))
}
