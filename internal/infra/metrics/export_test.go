package metrics

import "github.com/prometheus/client_golang/prometheus"

// GateDenialCounter returns the labeled child of the denial counter so tests
// can read its value.
func GateDenialCounter(check string) prometheus.Counter {
	return gateDenialsTotal.WithLabelValues(check)
}
