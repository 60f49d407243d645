package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var authAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Login and registration attempts by operation and outcome.",
	},
	[]string{"operation", "outcome"}, // outcome: 'ok', 'rejected', 'rate_limited', 'error'
)

var gateDenialsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gate_denials_total",
		Help: "Requests refused by the authorization gate, by check.",
	},
	[]string{"check"}, // 'token', 'subject', 'role', 'membership'
)

func init() {
	register(authAttemptsTotal, gateDenialsTotal)
}

func IncAuthAttempt(operation, outcome string) {
	authAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}

func IncGateDenial(check string) {
	gateDenialsTotal.WithLabelValues(check).Inc()
}
