// Package auth implementa el flujo de sign-in con Google.
//
// POST /auth/login recibe un ID token de Google, lo verifica (firma,
// audiencia y hosted domain), busca o crea el usuario, y devuelve un
// JWT de sesión propio además de setear la cookie de sesión de browser.
package auth

import (
	"net/http"
	"time"

	"github.com/socis-ca/website/internal/domain/repository"
	"github.com/socis-ca/website/internal/domain/types"
	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/http/helpers"
	"github.com/socis-ca/website/internal/http/middlewares"
	"github.com/socis-ca/website/internal/http/services/session"
	jwtx "github.com/socis-ca/website/internal/jwt"
	"github.com/socis-ca/website/internal/metrics"
	"github.com/socis-ca/website/internal/oauth/google"
	"github.com/socis-ca/website/internal/observability/logger"
)

// Controller maneja login/logout/me.
type Controller struct {
	Users    repository.UserRepository
	Verifier *google.Verifier
	Codec    *jwtx.Codec
	Sessions *session.Manager

	// IsBootstrapAdmin decide si un email nuevo arranca con ADMIN.
	// Viene de config (auth.bootstrap_admins), no de código.
	IsBootstrapAdmin func(email string) bool
}

type loginRequest struct {
	IDToken string `json:"id_token"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  *userDTO `json:"user"`
}

type userDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Permissions int       `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDTO(u *repository.User) *userDTO {
	return &userDTO{
		ID:          u.AccountID,
		Name:        u.Name,
		Email:       u.Email,
		Permissions: int(u.Permissions),
		CreatedAt:   u.CreatedAt,
	}
}

// Login es POST /auth/login.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context())

	var req loginRequest
	if appErr := helpers.DecodeJSON(r, &req); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if req.IDToken == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("falta id_token"))
		return
	}

	claims, err := c.Verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		result := "invalid_token"
		if err == google.ErrWrongDomain {
			result = "wrong_domain"
		}
		metrics.Logins.WithLabelValues(result).Inc()
		log.Warn("google token rejected", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrTokenInvalid.WithCause(err))
		return
	}

	user, err := c.Users.GetByAccountID(r.Context(), claims.Sub)
	if repository.IsNotFound(err) {
		user, err = c.createUser(r, claims)
	}
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		log.Error("login user resolution failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	token, err := c.Codec.Sign(map[string]any{
		"sub":   user.AccountID,
		"name":  user.Name,
		"email": user.Email,
	})
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		log.Error("session token signing failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	sid := c.Sessions.Create(user.AccountID)
	c.Sessions.SetCookie(w, sid)

	metrics.Logins.WithLabelValues("ok").Inc()
	log.Info("user signed in",
		logger.AccountID(user.AccountID),
		logger.Permissions(user.Permissions.String()),
	)
	helpers.WriteJSON(w, http.StatusOK, loginResponse{Token: token, User: toDTO(user)})
}

// createUser da de alta un usuario en su primer sign-in.
func (c *Controller) createUser(r *http.Request, claims *google.Claims) (*repository.User, error) {
	perms := types.PermNone
	if c.IsBootstrapAdmin != nil && c.IsBootstrapAdmin(claims.Email) {
		perms = types.PermAdmin
	}
	u, err := c.Users.Create(r.Context(), repository.CreateUserInput{
		AccountID:   claims.Sub,
		Name:        claims.Name,
		Email:       claims.Email,
		Permissions: perms,
	})
	if err != nil {
		return nil, err
	}
	logger.From(r.Context()).Info("user created on first sign-in",
		logger.AccountID(u.AccountID),
		logger.Permissions(u.Permissions.String()),
	)
	return u, nil
}

// Logout es GET /auth/logout. Idempotente.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	c.Sessions.Destroy(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Me es GET /auth/me: el usuario del request, o 401.
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	u := middlewares.UserFrom(r.Context())
	if u == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toDTO(u))
}
