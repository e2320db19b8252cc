// Package events expone el CRUD de eventos del club.
// Las lecturas son públicas; las mutaciones pasan por el route authorizer.
package events

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/socis-ca/website/internal/domain/repository"
	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/http/helpers"
	"github.com/socis-ca/website/internal/observability/logger"
)

// Controller maneja /api/v1/events.
type Controller struct {
	Events repository.EventRepository
}

type eventDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

type eventInput struct {
	Title       string    `json:"title"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Tags        []string  `json:"tags"`
}

func toDTO(ev *repository.Event) *eventDTO {
	return &eventDTO{
		ID:          ev.ID,
		Title:       ev.Title,
		StartTime:   ev.StartTime,
		EndTime:     ev.EndTime,
		Description: ev.Description,
		Location:    ev.Location,
		Tags:        ev.Tags,
		CreatedAt:   ev.CreatedAt,
	}
}

func (in *eventInput) validate() *httperrors.AppError {
	if in.Title == "" {
		return httperrors.ErrInvalidParameter.WithDetail("falta title")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return httperrors.ErrInvalidParameter.WithDetail("faltan start_time/end_time")
	}
	if in.EndTime.Before(in.StartTime) {
		return httperrors.ErrInvalidParameter.WithDetail("end_time anterior a start_time")
	}
	return nil
}

// List es GET /api/v1/events. Con ?upcoming=true devuelve solo los que
// todavía no terminaron.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := helpers.Pagination(r)
	filter := repository.EventFilter{Limit: limit, Offset: offset}
	if r.URL.Query().Get("upcoming") == "true" {
		now := time.Now()
		filter.After = &now
	}

	evs, err := c.Events.List(r.Context(), filter)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	items := make([]*eventDTO, 0, len(evs))
	for i := range evs {
		items = append(items, toDTO(&evs[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.ListResponse{
		Items: items, Limit: limit, Offset: offset, Count: len(items),
	})
}

// Get es GET /api/v1/events/{id}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ev, err := c.Events.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toDTO(ev))
}

// Create es POST /api/v1/events.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var in eventInput
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if appErr := in.validate(); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	ev, err := c.Events.Create(r.Context(), &repository.Event{
		Title:       in.Title,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: in.Description,
		Location:    in.Location,
		Tags:        in.Tags,
	})
	if err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	logger.From(r.Context()).Info("event created", logger.EventID(ev.ID))
	helpers.WriteJSON(w, http.StatusCreated, toDTO(ev))
}

// Update es PUT /api/v1/events/{id}. Reemplaza el evento completo.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	var in eventInput
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if appErr := in.validate(); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	ev := &repository.Event{
		ID:          chi.URLParam(r, "id"),
		Title:       in.Title,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: in.Description,
		Location:    in.Location,
		Tags:        in.Tags,
	}
	if err := c.Events.Update(r.Context(), ev); err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toDTO(ev))
}

// Delete es DELETE /api/v1/events/{id}.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.Events.Delete(r.Context(), id); err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	logger.From(r.Context()).Info("event deleted", logger.EventID(id))
	w.WriteHeader(http.StatusNoContent)
}
