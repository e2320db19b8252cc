// Package roboticon expone los desafíos de la competencia de robótica.
//
// Solo lecturas públicas: la carga y edición de desafíos se hace con
// socisctl directo contra la base, no por HTTP. Los desafíos ocultos
// no se sirven nunca por acá.
package roboticon

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/socis-ca/website/internal/domain/repository"
	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/http/helpers"
)

// Controller maneja /api/v1/roboticon.
type Controller struct {
	Challenges repository.ChallengeRepository
}

type challengeDTO struct {
	ID              string `json:"id"`
	ChallengeNumber int    `json:"challenge_number"`
	Description     string `json:"description"`
	Goal            string `json:"goal"`
	Parameters      string `json:"parameters"`
	Points          string `json:"points"`
	ImagePath       string `json:"image_path"`
	MapPath         string `json:"map_path"`
	Year            int    `json:"year"`
}

func toDTO(ch *repository.Challenge) *challengeDTO {
	return &challengeDTO{
		ID:              ch.ID,
		ChallengeNumber: ch.ChallengeNumber,
		Description:     ch.Description,
		Goal:            ch.Goal,
		Parameters:      ch.Parameters,
		Points:          ch.Points,
		ImagePath:       ch.ImagePath,
		MapPath:         ch.MapPath,
		Year:            ch.Year,
	}
}

// List es GET /api/v1/roboticon. Acepta ?year=2025; nunca incluye
// desafíos ocultos.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := helpers.Pagination(r)
	filter := repository.ChallengeFilter{Limit: limit, Offset: offset}
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("year inválido"))
			return
		}
		filter.Year = y
	}

	chs, err := c.Challenges.List(r.Context(), filter)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	items := make([]*challengeDTO, 0, len(chs))
	for i := range chs {
		items = append(items, toDTO(&chs[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.ListResponse{
		Items: items, Limit: limit, Offset: offset, Count: len(items),
	})
}

// Get es GET /api/v1/roboticon/{id}. Un desafío oculto se comporta
// como inexistente para el público.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ch, err := c.Challenges.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromError(err))
		return
	}
	if ch.Hidden {
		httperrors.WriteError(w, httperrors.ErrNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toDTO(ch))
}
