package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/socis-ca/website/internal/cache/memory"
	"github.com/socis-ca/website/internal/http/services/session"
)

func newManager() *session.Manager {
	return session.NewManager(memory.New(time.Minute), "socis_session", time.Minute, false)
}

func TestSessionLifecycle(t *testing.T) {
	m := newManager()
	sid := m.Create("acct-1")
	if sid == "" {
		t.Fatal("empty session id")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "socis_session", Value: sid})

	accountID, ok := m.Resolve(req)
	if !ok || accountID != "acct-1" {
		t.Fatalf("resolve = (%q, %v), want (acct-1, true)", accountID, ok)
	}

	// Destroy borra la sesión del cache y expira la cookie.
	rec := httptest.NewRecorder()
	m.Destroy(rec, req)
	if _, ok := m.Resolve(req); ok {
		t.Fatal("session should be gone after destroy")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("destroy should expire the cookie, got %+v", cookies)
	}
}

func TestSessionResolveWithoutCookie(t *testing.T) {
	m := newManager()
	if _, ok := m.Resolve(httptest.NewRequest("GET", "/", nil)); ok {
		t.Fatal("request without cookie should not resolve")
	}
}

func TestSessionResolveUnknownID(t *testing.T) {
	m := newManager()
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "socis_session", Value: "no-such-session"})
	if _, ok := m.Resolve(req); ok {
		t.Fatal("unknown session id should not resolve")
	}
}

func TestSetCookieAttributes(t *testing.T) {
	m := newManager()
	rec := httptest.NewRecorder()
	m.SetCookie(rec, "sid-123")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("want 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Value != "sid-123" || !c.HttpOnly || c.Path != "/" {
		t.Fatalf("cookie = %+v", c)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("SameSite = %v, want Lax", c.SameSite)
	}
}

// Dos IDs de sesión nunca colisionan y uno no resuelve al otro.
func TestSessionsAreIndependent(t *testing.T) {
	m := newManager()
	sid1 := m.Create("acct-1")
	sid2 := m.Create("acct-2")
	if sid1 == sid2 {
		t.Fatal("session ids must be unique")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "socis_session", Value: sid2})
	accountID, ok := m.Resolve(req)
	if !ok || accountID != "acct-2" {
		t.Fatalf("resolve = (%q, %v), want acct-2", accountID, ok)
	}
}
