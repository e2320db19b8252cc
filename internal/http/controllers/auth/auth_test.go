package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/socis-ca/website/internal/cache/memory"
	"github.com/socis-ca/website/internal/domain/repository"
	"github.com/socis-ca/website/internal/domain/types"
	"github.com/socis-ca/website/internal/http/controllers/auth"
	"github.com/socis-ca/website/internal/http/middlewares"
	"github.com/socis-ca/website/internal/http/services/session"
	jwtx "github.com/socis-ca/website/internal/jwt"
	"github.com/socis-ca/website/internal/oauth/google"
)

// memUsers es un UserRepository en memoria con Create real.
type memUsers struct {
	byID map[string]*repository.User
}

func (m *memUsers) GetByAccountID(_ context.Context, id string) (*repository.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if _, ok := m.byID[in.AccountID]; ok {
		return nil, repository.ErrConflict
	}
	u := &repository.User{
		AccountID:   in.AccountID,
		Name:        in.Name,
		Email:       in.Email,
		Permissions: in.Permissions,
		CreatedAt:   time.Now(),
	}
	m.byID[in.AccountID] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) List(context.Context, repository.ListUsersFilter) ([]repository.User, error) {
	return nil, repository.ErrNoDatabase
}
func (m *memUsers) SetPermissions(context.Context, string, types.Permission) error {
	return repository.ErrNoDatabase
}
func (m *memUsers) Delete(context.Context, string) error { return repository.ErrNoDatabase }

type env struct {
	users      *memUsers
	controller *auth.Controller
	googleKey  *rsa.PrivateKey
	codec      *jwtx.Codec
}

func newEnv(t *testing.T) *env {
	t.Helper()
	googleKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	siteKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	users := &memUsers{byID: map[string]*repository.User{}}
	codec := jwtx.NewCodecFromKeys(siteKey, &siteKey.PublicKey, "https://socis.ca", "socis-site", time.Hour)

	return &env{
		users:     users,
		googleKey: googleKey,
		codec:     codec,
		controller: &auth.Controller{
			Users:    users,
			Verifier: google.NewPinned(&googleKey.PublicKey, "cid", "socis.ca"),
			Codec:    codec,
			Sessions: session.NewManager(memory.New(time.Minute), "socis_session", time.Minute, false),
			IsBootstrapAdmin: func(email string) bool {
				return email == "presidente@socis.ca"
			},
		},
	}
}

func (e *env) idToken(t *testing.T, sub, email, hd string) string {
	t.Helper()
	now := time.Now()
	claims := jwtv5.MapClaims{
		"iss":   "https://accounts.google.com",
		"aud":   "cid",
		"sub":   sub,
		"email": email,
		"name":  "Test User",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	if hd != "" {
		claims["hd"] = hd
	}
	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims).SignedString(e.googleKey)
	require.NoError(t, err)
	return signed
}

func (e *env) login(t *testing.T, idToken string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"id_token": idToken})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	e.controller.Login(rec, req)
	return rec
}

func TestLoginCreatesUserOnFirstSignIn(t *testing.T) {
	e := newEnv(t)
	rec := e.login(t, e.idToken(t, "acct-1", "ada@socis.ca", "socis.ca"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID          string `json:"id"`
			Email       string `json:"email"`
			Permissions int    `json:"permissions"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "acct-1", resp.User.ID)
	require.Equal(t, int(types.PermNone), resp.User.Permissions)
	require.NotEmpty(t, resp.Token)

	// El token devuelto verifica contra el codec del sitio.
	claims, err := e.codec.Verify(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "acct-1", jwtx.ClaimString(claims, "sub"))

	// Y la respuesta setea la cookie de sesión.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "socis_session", cookies[0].Name)
}

func TestLoginBootstrapAdminGetsAdminBit(t *testing.T) {
	e := newEnv(t)
	rec := e.login(t, e.idToken(t, "acct-p", "presidente@socis.ca", "socis.ca"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	u, err := e.users.GetByAccountID(context.Background(), "acct-p")
	require.NoError(t, err)
	require.True(t, u.Permissions.IsSuperAdmin())
}

func TestLoginExistingUserKeepsPermissions(t *testing.T) {
	e := newEnv(t)
	e.users.byID["acct-1"] = &repository.User{
		AccountID: "acct-1", Email: "ada@socis.ca", Permissions: types.PermEvents,
	}

	rec := e.login(t, e.idToken(t, "acct-1", "ada@socis.ca", "socis.ca"))
	require.Equal(t, http.StatusOK, rec.Code)

	u, err := e.users.GetByAccountID(context.Background(), "acct-1")
	require.NoError(t, err)
	require.Equal(t, types.PermEvents, u.Permissions)
}

func TestLoginRejectsWrongDomain(t *testing.T) {
	e := newEnv(t)

	rec := e.login(t, e.idToken(t, "acct-x", "alguien@gmail.com", ""))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.login(t, e.idToken(t, "acct-y", "otro@otra.edu", "otra.edu"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Ningún usuario se creó en el camino.
	require.Empty(t, e.users.byID)
}

func TestLoginRejectsMissingToken(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	e.controller.Login(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	e := newEnv(t)

	// Sin usuario: 401.
	rec := httptest.NewRecorder()
	e.controller.Me(rec, httptest.NewRequest("GET", "/auth/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Con usuario en contexto: el DTO propio.
	u := &repository.User{AccountID: "acct-1", Email: "ada@socis.ca", Permissions: types.PermEvents}
	req := httptest.NewRequest("GET", "/auth/me", nil)
	req = req.WithContext(middlewares.WithUser(req.Context(), u))
	rec = httptest.NewRecorder()
	e.controller.Me(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto struct {
		ID          string `json:"id"`
		Permissions int    `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	require.Equal(t, "acct-1", dto.ID)
	require.Equal(t, int(types.PermEvents), dto.Permissions)
}
