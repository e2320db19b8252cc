// Package session maneja las sesiones de browser: una cookie con un ID
// opaco que referencia al usuario en el cache (memoria o Redis).
// El token JWT de API es independiente de esto; ver internal/jwt.
package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/socis-ca/website/internal/cache"
)

const keyPrefix = "sess:"

// Manager crea, resuelve y destruye sesiones.
type Manager struct {
	cache      cache.Cache
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewManager(c cache.Cache, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		cache:      c,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Create registra una sesión para el accountID y devuelve el session ID.
func (m *Manager) Create(accountID string) string {
	sid := uuid.NewString()
	m.cache.Set(keyPrefix+sid, []byte(accountID), m.ttl)
	return sid
}

// Resolve extrae la cookie del request y devuelve el accountID asociado.
// ok=false si no hay cookie o la sesión expiró.
func (m *Manager) Resolve(r *http.Request) (accountID string, ok bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	b, ok := m.cache.Get(keyPrefix + c.Value)
	if !ok {
		return "", false
	}
	return string(b), true
}

// SetCookie escribe la cookie de sesión en la respuesta.
func (m *Manager) SetCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Destroy elimina la sesión (si existe) y expira la cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		m.cache.Delete(keyPrefix + c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
