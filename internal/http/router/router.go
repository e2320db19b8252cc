// Package router arma el árbol de rutas completo del sitio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socis-ca/website/internal/http/controllers/admin"
	"github.com/socis-ca/website/internal/http/controllers/auth"
	"github.com/socis-ca/website/internal/http/controllers/events"
	"github.com/socis-ca/website/internal/http/controllers/execs"
	"github.com/socis-ca/website/internal/http/controllers/newsletter"
	"github.com/socis-ca/website/internal/http/controllers/products"
	"github.com/socis-ca/website/internal/http/controllers/roboticon"
	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/http/middlewares"
	"github.com/socis-ca/website/internal/metrics"
	"github.com/socis-ca/website/internal/rate"
)

// Deps agrupa todo lo que el router necesita ya construido.
type Deps struct {
	Auth       *auth.Controller
	Admin      *admin.Controller
	Events     *events.Controller
	Execs      *execs.Controller
	Products   *products.Controller
	Roboticon  *roboticon.Controller
	Newsletter *newsletter.Controller

	// Middlewares pre-armados (dependen de config y stores).
	Deserialize middlewares.Middleware
	LoginLimit  rate.Limiter // nil = sin rate limit
}

// New construye el router chi con la cadena de middlewares global:
// request ID -> logging -> metrics -> deserialize -> route auth.
// El orden importa: el authorizer necesita el usuario ya resuelto.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		middlewares.WithMetrics(),
		d.Deserialize,
		middlewares.RouteAuth(middlewares.DefaultRules()),
	)

	// ─── Operación ───
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// ─── Auth ───
	r.Route("/auth", func(r chi.Router) {
		login := http.HandlerFunc(d.Auth.Login)
		r.Method(http.MethodPost, "/login", middlewares.Chain(login, middlewares.WithRateLimit(d.LoginLimit)))
		r.Get("/logout", d.Auth.Logout)
		r.Get("/me", d.Auth.Me)
	})

	// ─── Newsletter público ───
	r.Route("/newsletter", func(r chi.Router) {
		r.Post("/subscribe", d.Newsletter.Subscribe)
		r.Post("/unsubscribe", d.Newsletter.Unsubscribe)
	})

	// ─── API v1 ───
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", d.Events.List)
			r.Post("/", d.Events.Create)
			r.Get("/{id}", d.Events.Get)
			r.Put("/{id}", d.Events.Update)
			r.Delete("/{id}", d.Events.Delete)
		})
		r.Route("/execs", func(r chi.Router) {
			r.Get("/", d.Execs.List)
			r.Post("/", d.Execs.Create)
			r.Get("/{id}", d.Execs.Get)
			r.Put("/{id}", d.Execs.Update)
			r.Delete("/{id}", d.Execs.Delete)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", d.Products.List)
			r.Post("/", d.Products.Create)
			r.Get("/{id}", d.Products.Get)
			r.Put("/{id}", d.Products.Update)
			r.Delete("/{id}", d.Products.Delete)
		})
		r.Route("/roboticon", func(r chi.Router) {
			r.Get("/", d.Roboticon.List)
			r.Get("/{id}", d.Roboticon.Get)
		})
	})

	// ─── Admin ───
	r.Route("/admin", func(r chi.Router) {
		r.Get("/", d.Admin.Dashboard)
		r.Route("/exec/users", func(r chi.Router) {
			r.Get("/", d.Admin.ListUsers)
			r.Put("/{id}/permissions", d.Admin.SetPermissions)
			r.Delete("/{id}", d.Admin.DeleteUser)
		})
		r.Route("/newsletter", func(r chi.Router) {
			r.Get("/subscribers", d.Newsletter.List)
			r.Delete("/subscribers", d.Newsletter.Remove)
			r.Post("/broadcast", d.Newsletter.Broadcast)
		})
		r.Route("/store", func(r chi.Router) {
			r.Get("/products", d.Products.List)
			r.Put("/products/{id}/availability", d.Products.SetAvailability)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})

	return r
}
