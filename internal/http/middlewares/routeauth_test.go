package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/socis-ca/website/internal/domain/repository"
	"github.com/socis-ca/website/internal/domain/types"
	"github.com/socis-ca/website/internal/http/middlewares"
)

func permsPtr(p types.Permission) *types.Permission { return &p }

func TestAuthorizeMatrix(t *testing.T) {
	rules := middlewares.DefaultRules()

	cases := []struct {
		name       string
		method     string
		path       string
		perms      *types.Permission // nil = anónimo
		wantStatus int               // 0 = permitido
	}{
		// Rutas públicas: ni /api ni /admin.
		{"home page anonymous", "GET", "/", nil, 0},
		{"newsletter subscribe anonymous", "POST", "/newsletter/subscribe", nil, 0},
		{"auth login anonymous", "POST", "/auth/login", nil, 0},

		// Lectura del API es pública.
		{"api events read anonymous", "GET", "/api/v1/events", nil, 0},
		{"api execs read anonymous", "GET", "/api/v1/execs", nil, 0},
		{"api roboticon read anonymous", "GET", "/api/v1/roboticon/abc", nil, 0},

		// Mutaciones del API sin identidad: 401.
		{"api events write anonymous", "POST", "/api/v1/events", nil, 401},
		{"api execs write anonymous", "POST", "/api/v1/execs", nil, 401},
		{"admin anonymous", "GET", "/admin", nil, 401},

		// Identidad sin el bit pedido: 403.
		{"events write with wrong bit", "POST", "/api/v1/execs", permsPtr(types.PermEvents), 403},
		{"events write with events bit", "POST", "/api/v1/events", permsPtr(types.PermEvents), 0},
		{"events subpath with events bit", "PUT", "/api/v1/events/42", permsPtr(types.PermEvents), 0},
		{"execs write needs admin", "POST", "/api/v1/execs", permsPtr(types.PermAdmin), 0},
		{"products write needs merchant", "POST", "/api/v1/products", permsPtr(types.PermSeller), 403},
		{"products write with merchant", "POST", "/api/v1/products", permsPtr(types.PermMerchant), 0},

		// ADMIN es super-bit: pasa cualquier chequeo.
		{"admin bit passes events", "POST", "/api/v1/events", permsPtr(types.PermAdmin), 0},
		{"admin bit passes store", "PUT", "/admin/store/products/1/availability", permsPtr(types.PermAdmin), 0},

		// /admin exacto: basta cualquier permiso.
		{"dashboard with any perm", "GET", "/admin", permsPtr(types.PermSeller), 0},
		{"dashboard with no perms", "GET", "/admin", permsPtr(types.PermNone), 403},

		// /admin/store pide SELLER, no MERCHANT.
		{"store with seller", "GET", "/admin/store", permsPtr(types.PermSeller), 0},
		{"store with merchant only", "GET", "/admin/store", permsPtr(types.PermMerchant), 403},
		{"store with merchant and seller", "GET", "/admin/store", permsPtr(types.PermMerchant | types.PermSeller), 0},

		// Ruta protegida sin entrada en la tabla: nadie escribe.
		{"unlisted api write any bits", "POST", "/api/v1/roboticon", permsPtr(types.PermEvents | types.PermSeller | types.PermNewsletter | types.PermMerchant), 403},
		{"unlisted admin path", "GET", "/admin/whatever", permsPtr(types.PermEvents), 403},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := middlewares.Authorize(rules, tc.method, tc.path, tc.perms)
			if tc.wantStatus == 0 {
				if err != nil {
					t.Fatalf("want allow, got %d (%s)", err.HTTPStatus, err.Code)
				}
				return
			}
			if err == nil {
				t.Fatalf("want %d, got allow", tc.wantStatus)
			}
			if err.HTTPStatus != tc.wantStatus {
				t.Fatalf("want %d, got %d (%s)", tc.wantStatus, err.HTTPStatus, err.Code)
			}
		})
	}
}

func TestRouteAuthMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := middlewares.RouteAuth(middlewares.DefaultRules())(next)

	// Anónimo contra una mutación del API.
	req := httptest.NewRequest("POST", "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous write: status = %d, want 401", rec.Code)
	}

	// Usuario con el bit correcto en el contexto.
	u := &repository.User{AccountID: "a1", Permissions: types.PermEvents}
	req = httptest.NewRequest("POST", "/api/v1/events", nil)
	req = req.WithContext(middlewares.WithUser(req.Context(), u))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authorized write: status = %d, want 204", rec.Code)
	}

	// Usuario con otro bit: 403.
	u = &repository.User{AccountID: "a2", Permissions: types.PermNewsletter}
	req = httptest.NewRequest("POST", "/api/v1/events", nil)
	req = req.WithContext(middlewares.WithUser(req.Context(), u))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong bit write: status = %d, want 403", rec.Code)
	}
}
