// Package metrics exposes Prometheus counters for the certificate service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	LoginAttempts       *prometheus.CounterVec
	CertificatesCreated prometheus.Counter
	CertificatesUpdated prometheus.Counter
	CertificatesDeleted prometheus.Counter
	Searches            prometheus.Counter
}

// New registers the collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certificados_login_attempts_total",
			Help: "Login attempts by outcome (success, failure, throttled).",
		}, []string{"outcome"}),
		CertificatesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "certificados_created_total",
			Help: "Certificates created.",
		}),
		CertificatesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "certificados_updated_total",
			Help: "Certificates updated.",
		}),
		CertificatesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "certificados_deleted_total",
			Help: "Certificates deleted.",
		}),
		Searches: factory.NewCounter(prometheus.CounterOpts{
			Name: "certificados_searches_total",
			Help: "Public search requests served.",
		}),
	}
}

// NewDefault registers the collectors on the default registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
