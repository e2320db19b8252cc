package middlewares

import (
	"net/http"
	"strings"

	"github.com/socis-ca/website/internal/domain/types"
	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/metrics"
	"github.com/socis-ca/website/internal/observability/logger"
)

// Rule asocia un matcher de path con la capacidad requerida.
// Las reglas se evalúan en orden, primera que matchea gana: la tabla
// tiene que listar lo más específico primero.
type Rule struct {
	Prefix string // matchea Prefix exacto o Prefix + "/..."
	Exact  bool   // true: solo match exacto
	Need   types.Permission
	Any    bool // true: basta cualquier permiso != NONE (ignora Need)
}

func (ru Rule) matches(path string) bool {
	if ru.Exact {
		return path == ru.Prefix
	}
	return path == ru.Prefix || strings.HasPrefix(path, ru.Prefix+"/")
}

// DefaultRules es la tabla de permisos del sitio, más específico primero.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "/api/v1/events", Need: types.PermEvents},
		{Prefix: "/admin/events", Need: types.PermEvents},
		{Prefix: "/api/v1/execs", Need: types.PermAdmin},
		{Prefix: "/admin/exec", Need: types.PermAdmin},
		{Prefix: "/api/v1/newsletter", Need: types.PermNewsletter},
		{Prefix: "/admin/newsletter", Need: types.PermNewsletter},
		{Prefix: "/api/v1/products", Need: types.PermMerchant},
		{Prefix: "/admin/products", Need: types.PermMerchant},
		{Prefix: "/admin/store", Need: types.PermSeller},
		{Prefix: "/admin", Exact: true, Any: true},
	}
}

// Authorize es la función de decisión pura del route authorizer:
// (método, path, usuario resuelto) -> nil para permitir, o el AppError
// (401/403) con el que rechazar. Sin estado entre requests.
func Authorize(rules []Rule, method, path string, perms *types.Permission) *httperrors.AppError {
	isAPI := strings.HasPrefix(path, "/api/")
	isAdmin := path == "/admin" || strings.HasPrefix(path, "/admin/")

	// 1. Rutas públicas: todo lo que no es /api/* ni /admin.
	if !isAPI && !isAdmin {
		return nil
	}

	// 2. La lectura del API es pública.
	if isAPI && method == http.MethodGet {
		return nil
	}

	// 3. De acá en adelante hace falta identidad.
	if perms == nil {
		return httperrors.ErrUnauthorized.WithDetail("necesitás estar autenticado")
	}

	// 4. Tabla de capacidades, primera regla que matchea decide.
	for _, ru := range rules {
		if !ru.matches(path) {
			continue
		}
		if ru.Any {
			if perms.HasAny() {
				return nil
			}
			return httperrors.ErrForbidden
		}
		if perms.Has(ru.Need) {
			return nil
		}
		return httperrors.ErrForbidden
	}

	// Ruta protegida sin entrada en la tabla: nadie la puede escribir.
	return httperrors.ErrForbidden
}

// RouteAuth gatea el acceso a /api y /admin según la tabla de reglas.
// Corre DESPUÉS de Deserialize (necesita el usuario en el contexto).
func RouteAuth(rules []Rule) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var perms *types.Permission
			if u := UserFrom(r.Context()); u != nil {
				p := u.Permissions
				perms = &p
			}

			if err := Authorize(rules, r.Method, r.URL.Path, perms); err != nil {
				outcome := "forbidden"
				if err.HTTPStatus == http.StatusUnauthorized {
					outcome = "unauthenticated"
				}
				metrics.AuthDecisions.WithLabelValues(outcome).Inc()
				logger.From(r.Context()).Info("request rejected",
					logger.Status(err.HTTPStatus),
					logger.String("code", err.Code),
				)
				httperrors.WriteError(w, err)
				return
			}

			metrics.AuthDecisions.WithLabelValues("allow").Inc()
			next.ServeHTTP(w, r)
		})
	}
}
