// Package metrics expone los contadores Prometheus del sitio.
// Todo se registra en el registry default; /metrics lo sirve Handler().
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests cuenta requests por método, ruta y status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socis",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total de requests HTTP procesados.",
	}, []string{"method", "route", "status"})

	// HTTPDuration mide la latencia por ruta.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "socis",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duración de los requests HTTP.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AuthDecisions cuenta los veredictos del route authorizer.
	// outcome: allow | unauthenticated | forbidden
	AuthDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socis",
		Subsystem: "auth",
		Name:      "decisions_total",
		Help:      "Decisiones de autorización por outcome.",
	}, []string{"outcome"})

	// Logins cuenta intentos de login por resultado.
	// result: ok | invalid_token | wrong_domain | error
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socis",
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Intentos de login con Google por resultado.",
	}, []string{"result"})

	// JWKSFetches cuenta fetches del key set remoto de Google.
	// result: ok | error | rate_limited
	JWKSFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socis",
		Subsystem: "google",
		Name:      "jwks_fetches_total",
		Help:      "Fetches del JWKS remoto por resultado.",
	}, []string{"result"})
)

// Handler devuelve el handler de /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
