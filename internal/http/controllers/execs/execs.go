// Package execs expone el CRUD del equipo ejecutivo.
package execs

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/socis-ca/website/internal/domain/repository"
	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/http/helpers"
)

// Controller maneja /api/v1/execs.
type Controller struct {
	Execs repository.ExecRepository
}

type execDTO struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Year  int    `json:"year"`
}

type execInput struct {
	Order int    `json:"order"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Year  int    `json:"year"`
}

func toDTO(e *repository.Exec) *execDTO {
	return &execDTO{ID: e.ID, Order: e.Order, Name: e.Name, Role: e.Role, Email: e.Email, Year: e.Year}
}

func (in *execInput) validate() *httperrors.AppError {
	if in.Name == "" || in.Role == "" {
		return httperrors.ErrInvalidParameter.WithDetail("faltan name/role")
	}
	if in.Year < 2000 {
		return httperrors.ErrInvalidParameter.WithDetail("year inválido")
	}
	return nil
}

// List es GET /api/v1/execs. Acepta ?year=2024 para filtrar por ciclo.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := helpers.Pagination(r)
	filter := repository.ExecFilter{Limit: limit, Offset: offset}
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("year inválido"))
			return
		}
		filter.Year = y
	}

	es, err := c.Execs.List(r.Context(), filter)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	items := make([]*execDTO, 0, len(es))
	for i := range es {
		items = append(items, toDTO(&es[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.ListResponse{
		Items: items, Limit: limit, Offset: offset, Count: len(items),
	})
}

// Get es GET /api/v1/execs/{id}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	e, err := c.Execs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toDTO(e))
}

// Create es POST /api/v1/execs.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var in execInput
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if appErr := in.validate(); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	e, err := c.Execs.Create(r.Context(), &repository.Exec{
		Order: in.Order, Name: in.Name, Role: in.Role, Email: in.Email, Year: in.Year,
	})
	if err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, toDTO(e))
}

// Update es PUT /api/v1/execs/{id}.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	var in execInput
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if appErr := in.validate(); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	e := &repository.Exec{
		ID: chi.URLParam(r, "id"), Order: in.Order, Name: in.Name,
		Role: in.Role, Email: in.Email, Year: in.Year,
	}
	if err := c.Execs.Update(r.Context(), e); err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toDTO(e))
}

// Delete es DELETE /api/v1/execs/{id}.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.Execs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
