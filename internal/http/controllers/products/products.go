// Package products expone el CRUD del merch store.
//
// Las mutaciones via /api/v1/products requieren el bit MERCHANT; el
// toggle de disponibilidad para vendedores vive en /admin/store y pide
// SELLER (ver SetAvailability).
package products

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socis-ca/website/internal/domain/repository"
	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/http/helpers"
	"github.com/socis-ca/website/internal/observability/logger"
)

// Controller maneja /api/v1/products y /admin/store.
type Controller struct {
	Products repository.ProductRepository
}

type productDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	ImagePath   string `json:"image_path"`
	Available   bool   `json:"available"`
}

type productInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	ImagePath   string `json:"image_path"`
	Available   bool   `json:"available"`
}

func toDTO(p *repository.Product) *productDTO {
	return &productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		ImagePath:   p.ImagePath,
		Available:   p.Available,
	}
}

func (in *productInput) validate() *httperrors.AppError {
	if in.Name == "" {
		return httperrors.ErrInvalidParameter.WithDetail("falta name")
	}
	if in.PriceCents < 0 {
		return httperrors.ErrInvalidParameter.WithDetail("price_cents negativo")
	}
	return nil
}

// List es GET /api/v1/products. El catálogo público solo muestra
// disponibles salvo que se pida ?all=true (la tabla de rutas ya exige
// permiso para eso a nivel admin; acá simplemente respetamos el flag).
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := helpers.Pagination(r)
	filter := repository.ProductFilter{
		Limit:         limit,
		Offset:        offset,
		OnlyAvailable: r.URL.Query().Get("all") != "true",
	}

	ps, err := c.Products.List(r.Context(), filter)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	items := make([]*productDTO, 0, len(ps))
	for i := range ps {
		items = append(items, toDTO(&ps[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.ListResponse{
		Items: items, Limit: limit, Offset: offset, Count: len(items),
	})
}

// Get es GET /api/v1/products/{id}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	p, err := c.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toDTO(p))
}

// Create es POST /api/v1/products.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if appErr := in.validate(); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	p, err := c.Products.Create(r.Context(), &repository.Product{
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		ImagePath:   in.ImagePath,
		Available:   in.Available,
	})
	if err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	logger.From(r.Context()).Info("product created", logger.ProductID(p.ID))
	helpers.WriteJSON(w, http.StatusCreated, toDTO(p))
}

// Update es PUT /api/v1/products/{id}.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if appErr := in.validate(); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	p := &repository.Product{
		ID:          chi.URLParam(r, "id"),
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		ImagePath:   in.ImagePath,
		Available:   in.Available,
	}
	if err := c.Products.Update(r.Context(), p); err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toDTO(p))
}

// Delete es DELETE /api/v1/products/{id}.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.Products.Delete(r.Context(), id); err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	logger.From(r.Context()).Info("product deleted", logger.ProductID(id))
	w.WriteHeader(http.StatusNoContent)
}

// SetAvailability es PUT /admin/store/products/{id}/availability.
// Es la única mutación que un SELLER puede hacer: prender o apagar
// un producto sin tocar el resto de sus campos.
func (c *Controller) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Available bool `json:"available"`
	}
	if appErr := helpers.DecodeJSON(r, &in); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	id := chi.URLParam(r, "id")
	p, err := c.Products.GetByID(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	p.Available = in.Available
	if err := c.Products.Update(r.Context(), p); err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	logger.From(r.Context()).Info("product availability changed",
		logger.ProductID(id),
		logger.Bool("available", in.Available),
	)
	helpers.WriteJSON(w, http.StatusOK, toDTO(p))
}
