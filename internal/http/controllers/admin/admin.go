// Package admin expone el dashboard y la gestión de usuarios.
//
// GET /admin es accesible a cualquier usuario con al menos un permiso
// y le dice qué paneles puede ver; /admin/exec/users es solo ADMIN.
package admin

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/socis-ca/website/internal/domain/repository"
	"github.com/socis-ca/website/internal/domain/types"
	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/http/helpers"
	"github.com/socis-ca/website/internal/http/middlewares"
	"github.com/socis-ca/website/internal/observability/logger"
)

// Controller maneja /admin y /admin/exec/users.
type Controller struct {
	Users repository.UserRepository
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

type dashboardResponse struct {
	User   *userDTO `json:"user"`
	Panels []string `json:"panels"`
}

// Dashboard es GET /admin: devuelve el usuario y los paneles que su
// bitmask habilita. El front arma el menú con esto en vez de duplicar
// la lógica de permisos.
func (c *Controller) Dashboard(w http.ResponseWriter, r *http.Request) {
	u := middlewares.UserFrom(r.Context())
	if u == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	panels := make([]string, 0, 5)
	if u.Permissions.Has(types.PermEvents) {
		panels = append(panels, "events")
	}
	if u.Permissions.Has(types.PermNewsletter) {
		panels = append(panels, "newsletter")
	}
	if u.Permissions.Has(types.PermSeller) {
		panels = append(panels, "store")
	}
	if u.Permissions.Has(types.PermMerchant) {
		panels = append(panels, "products")
	}
	if u.Permissions.Has(types.PermAdmin) {
		panels = append(panels, "users")
	}

	helpers.WriteJSON(w, http.StatusOK, dashboardResponse{User: toDTO(u), Panels: panels})
}

// ListUsers es GET /admin/exec/users.
func (c *Controller) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := helpers.Pagination(r)
	us, err := c.Users.List(r.Context(), repository.ListUsersFilter{Limit: limit, Offset: offset})
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	items := make([]*userDTO, 0, len(us))
	for i := range us {
		items = append(items, toDTO(&us[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.ListResponse{
		Items: items, Limit: limit, Offset: offset, Count: len(items),
	})
}

// SetPermissions es PUT /admin/exec/users/{id}/permissions: reemplaza
// el bitmask entero del usuario. Un admin no puede sacarse el bit ADMIN
// a sí mismo; que se lo saque otro.
func (c *Controller) SetPermissions(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Permissions int `json:"permissions"`
	}
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	perms := types.Permission(in.Permissions)
	if perms < 0 || perms > types.PermEvents|types.PermSeller|types.PermNewsletter|types.PermMerchant|types.PermAdmin {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("bitmask fuera de rango"))
		return
	}

	target := chi.URLParam(r, "id")
	if me := middlewares.UserFrom(r.Context()); me != nil && me.AccountID == target && !perms.Has(types.PermAdmin) {
		httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("no podés quitarte ADMIN a vos mismo"))
		return
	}

	if err := c.Users.SetPermissions(r.Context(), target, perms); err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	logger.From(r.Context()).Info("user permissions changed",
		logger.AccountID(target),
		logger.Permissions(perms.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser es DELETE /admin/exec/users/{id}.
func (c *Controller) DeleteUser(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "id")
	if me := middlewares.UserFrom(r.Context()); me != nil && me.AccountID == target {
		httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("no podés borrarte a vos mismo"))
		return
	}
	if err := c.Users.Delete(r.Context(), target); err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	logger.From(r.Context()).Info("user deleted", logger.AccountID(target))
	w.WriteHeader(http.StatusNoContent)
}
