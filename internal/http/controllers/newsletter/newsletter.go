// Package newsletter maneja las suscripciones y el envío del boletín.
//
// Suscribirse y desuscribirse es público (viven fuera de /api y /admin,
// el link de baja va en cada mail); la administración y el broadcast
// requieren el bit NEWSLETTER.
package newsletter

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/socis-ca/website/internal/domain/repository"
	"github.com/socis-ca/website/internal/email"
	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/http/helpers"
	"github.com/socis-ca/website/internal/observability/logger"
)

// maxConcurrentSends limita los dials SMTP simultáneos del broadcast.
const maxConcurrentSends = 4

// Controller maneja /newsletter/* (público) y /admin/newsletter.
type Controller struct {
	Subscribers repository.SubscriberRepository
	Sender      email.Sender
}

type subscriberDTO struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

func toDTO(s *repository.Subscriber) *subscriberDTO {
	return &subscriberDTO{ID: s.ID, Email: s.Email, SubscribedAt: s.SubscribedAt}
}

func normalizeEmail(raw string) (string, *httperrors.AppError) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if addr == "" {
		return "", httperrors.ErrInvalidParameter.WithDetail("falta email")
	}
	if _, err := mail.ParseAddress(addr); err != nil {
		return "", httperrors.ErrInvalidParameter.WithDetail("email inválido")
	}
	return addr, nil
}

// Subscribe es POST /newsletter/subscribe. Idempotente: suscribirse dos
// veces responde 200 con la suscripción existente.
func (c *Controller) Subscribe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	addr, appErr := normalizeEmail(in.Email)
	if appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	sub, err := c.Subscribers.Subscribe(r.Context(), addr)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	logger.From(r.Context()).Info("newsletter subscription", logger.Email(addr))
	helpers.WriteJSON(w, http.StatusOK, toDTO(sub))
}

// Unsubscribe es POST /newsletter/unsubscribe. También idempotente:
// darse de baja de un email que no estaba suscripto responde 204 igual,
// para no revelar qué direcciones están en la lista.
func (c *Controller) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	addr, appErr := normalizeEmail(in.Email)
	if appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	if err := c.Subscribers.Unsubscribe(r.Context(), addr); err != nil && !repository.IsNotFound(err) {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List es GET /admin/newsletter/subscribers.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := helpers.Pagination(r)
	subs, err := c.Subscribers.List(r.Context(), limit, offset)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	items := make([]*subscriberDTO, 0, len(subs))
	for i := range subs {
		items = append(items, toDTO(&subs[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.ListResponse{
		Items: items, Limit: limit, Offset: offset, Count: len(items),
	})
}

// Remove es DELETE /admin/newsletter/subscribers: baja administrativa
// de un email puntual.
func (c *Controller) Remove(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	addr, appErr := normalizeEmail(in.Email)
	if appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if err := c.Subscribers.Unsubscribe(r.Context(), addr); err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type broadcastRequest struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

type broadcastResponse struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Broadcast es POST /admin/newsletter/broadcast: manda el boletín a
// toda la lista. Un fallo en un destinatario no frena el resto; la
// respuesta resume cuántos salieron.
func (c *Controller) Broadcast(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context())

	var req broadcastRequest
	if appErr := helpers.DecodeJSON(r, &req); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if req.Subject == "" || req.HTMLBody == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("faltan subject/html_body"))
		return
	}
	if c.Sender == nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithDetail("SMTP no configurado"))
		return
	}

	// La lista entera: paginamos contra la base en tandas grandes.
	var resp broadcastResponse
	const batch = 500
	for offset := 0; ; offset += batch {
		subs, err := c.Subscribers.List(r.Context(), batch, offset)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
			return
		}
		if len(subs) == 0 {
			break
		}

		sent, failed := c.sendBatch(subs, &req, log)
		resp.Sent += sent
		resp.Failed += failed

		if len(subs) < batch {
			break
		}
	}

	log.Info("newsletter broadcast finished",
		logger.Int("sent", resp.Sent),
		logger.Int("failed", resp.Failed),
	)
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func (c *Controller) sendBatch(subs []repository.Subscriber, req *broadcastRequest, log *zap.Logger) (sent, failed int) {
	var g errgroup.Group
	g.SetLimit(maxConcurrentSends)

	results := make([]error, len(subs))
	for i := range subs {
		i := i
		g.Go(func() error {
			results[i] = c.Sender.Send(subs[i].Email, req.Subject, req.HTMLBody, req.TextBody)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range results {
		if err != nil {
			failed++
			log.Warn("newsletter send failed", logger.Email(subs[i].Email), logger.Err(err))
			continue
		}
		sent++
	}
	return sent, failed
}
