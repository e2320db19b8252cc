package middlewares_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/socis-ca/website/internal/cache/memory"
	"github.com/socis-ca/website/internal/domain/repository"
	"github.com/socis-ca/website/internal/domain/types"
	"github.com/socis-ca/website/internal/http/middlewares"
	"github.com/socis-ca/website/internal/http/services/session"
	jwtx "github.com/socis-ca/website/internal/jwt"
)

// fakeUsers implementa UserRepository sobre un map.
type fakeUsers struct {
	byID map[string]*repository.User
}

func (f *fakeUsers) GetByAccountID(_ context.Context, id string) (*repository.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) Create(context.Context, repository.CreateUserInput) (*repository.User, error) {
	return nil, repository.ErrNoDatabase
}
func (f *fakeUsers) List(context.Context, repository.ListUsersFilter) ([]repository.User, error) {
	return nil, repository.ErrNoDatabase
}
func (f *fakeUsers) SetPermissions(context.Context, string, types.Permission) error {
	return repository.ErrNoDatabase
}
func (f *fakeUsers) Delete(context.Context, string) error { return repository.ErrNoDatabase }

type deserializeEnv struct {
	users    *fakeUsers
	sessions *session.Manager
	codec    *jwtx.Codec
	handler  http.Handler

	// gotUser captura el usuario que llegó al handler final.
	gotUser **repository.User
}

func newDeserializeEnv(t *testing.T) *deserializeEnv {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	users := &fakeUsers{byID: map[string]*repository.User{
		"acct-1": {AccountID: "acct-1", Name: "Ada", Email: "ada@socis.ca", Permissions: types.PermEvents},
	}}
	sessions := session.NewManager(memory.New(time.Minute), "socis_session", time.Minute, false)
	codec := jwtx.NewCodecFromKeys(key, &key.PublicKey, "iss", "aud", time.Hour)

	var got *repository.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middlewares.UserFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	return &deserializeEnv{
		users:    users,
		sessions: sessions,
		codec:    codec,
		handler:  middlewares.Deserialize(users, sessions, codec)(next),
		gotUser:  &got,
	}
}

func TestDeserializeNoCredentials(t *testing.T) {
	env := newDeserializeEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if *env.gotUser != nil {
		t.Fatal("anonymous request should carry no user")
	}
}

func TestDeserializeSessionCookie(t *testing.T) {
	env := newDeserializeEnv(t)
	sid := env.sessions.Create("acct-1")

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "socis_session", Value: sid})
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	u := *env.gotUser
	if u == nil || u.AccountID != "acct-1" {
		t.Fatalf("user = %+v, want acct-1", u)
	}
}

// Una sesión válida que apunta a un usuario borrado NO corta el request:
// sigue como anónimo.
func TestDeserializeDeadSessionContinuesAnonymous(t *testing.T) {
	env := newDeserializeEnv(t)
	sid := env.sessions.Create("acct-gone")

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "socis_session", Value: sid})
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (anonymous continue)", rec.Code)
	}
	if *env.gotUser != nil {
		t.Fatal("dead session should not attach a user")
	}
}

func TestDeserializeBearerToken(t *testing.T) {
	env := newDeserializeEnv(t)
	token, err := env.codec.Sign(map[string]any{"sub": "acct-1"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	u := *env.gotUser
	if u == nil || u.AccountID != "acct-1" {
		t.Fatalf("user = %+v, want acct-1", u)
	}
}

// A diferencia de la sesión muerta, un bearer PRESENTE e inválido
// falla duro con 401.
func TestDeserializeInvalidBearerFailsHard(t *testing.T) {
	env := newDeserializeEnv(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("401 should carry WWW-Authenticate")
	}
}

// Token bien firmado de una cuenta que ya no existe: también 401.
func TestDeserializeBearerUnknownUserFailsHard(t *testing.T) {
	env := newDeserializeEnv(t)
	token, err := env.codec.Sign(map[string]any{"sub": "acct-gone"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
