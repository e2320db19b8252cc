package middlewares

import (
	"net"
	"net/http"
	"strconv"

	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/observability/logger"
	"github.com/socis-ca/website/internal/rate"
)

// WithRateLimit limita por IP usando el limiter dado.
// Si el backend del limiter falla (ej: Redis caído) el request PASA:
// preferimos degradar el límite antes que tirar el login.
func WithRateLimit(limiter rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			res, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
				httperrors.WriteError(w, httperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP saca la IP del peer, respetando X-Forwarded-For si existe
// (el sitio corre detrás de un reverse proxy).
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
