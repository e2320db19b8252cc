package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/socis-ca/website/internal/domain/repository"
)

// AppError define la estructura estándar para errores de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // no se serializa, usado para el header
	Err        error  `json:"-"` // causa original, útil para logs, no se expone al cliente
}

// Error implementa la interfaz error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError.
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// FromError intenta convertir un error genérico en un AppError.
// Los errores sentinela del dominio se traducen a su status HTTP;
// cualquier otra cosa se colapsa a 500 conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound.WithCause(err)
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict.WithCause(err)
	case errors.Is(err, repository.ErrInvalidInput):
		return ErrBadRequest.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail agrega detalle al error.
// Devuelve una COPIA para no mutar las variables globales base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega el error original (causa). Devuelve una COPIA.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

var (
	// ─── 400 Bad Request ───
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidParameter = &AppError{
		Code:       "INVALID_PARAMETER",
		Message:    "Uno de los parámetros de la URL o query string es inválido.",
		HTTPStatus: http.StatusBadRequest,
	}

	// ─── 401 Unauthorized ───
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "No autorizado. Se requiere autenticación.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "El token de acceso es inválido o está malformado.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "El token de acceso ha expirado.",
		HTTPStatus: http.StatusUnauthorized,
	}

	// ─── 403 Forbidden ───
	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "No tenés permisos suficientes para esta operación.",
		HTTPStatus: http.StatusForbidden,
	}

	// ─── 404 Not Found ───
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "El recurso solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	// ─── 409 Conflict ───
	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "El recurso ya existe o entra en conflicto con otro.",
		HTTPStatus: http.StatusConflict,
	}

	// ─── 429 Too Many Requests ───
	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Demasiadas solicitudes. Probá de nuevo en unos segundos.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	// ─── 500 Internal Server Error ───
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "Ocurrió un error interno. Intentá más tarde.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
