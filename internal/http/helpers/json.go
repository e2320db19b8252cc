// Package helpers tiene utilidades compartidas por los controllers HTTP.
package helpers

import (
	"encoding/json"
	"net/http"
	"strconv"

	httperrors "github.com/socis-ca/website/internal/http/errors"
)

const maxBodyBytes = 1 << 20 // 1 MiB alcanza para cualquier payload del sitio

// WriteJSON serializa v con el status dado.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON parsea el body en dst. Devuelve un AppError listo para
// WriteError si el JSON está roto.
func DecodeJSON(r *http.Request, dst any) *httperrors.AppError {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return httperrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

// Pagination extrae limit/offset de la query string con defaults sanos.
func Pagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// ListResponse es el envelope estándar para listados paginados.
type ListResponse struct {
	Items  any `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}
