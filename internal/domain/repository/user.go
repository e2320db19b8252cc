package repository

import (
	"context"
	"time"

	"github.com/socis-ca/website/internal/domain/types"
)

// User representa un miembro del club con cuenta en el sitio.
// AccountID es el "sub" de Google: único e inmutable una vez creado.
type User struct {
	AccountID   string
	Name        string
	Email       string
	Permissions types.Permission
	CreatedAt   time.Time
}

// CreateUserInput contiene los datos para crear un usuario.
// Permissions arranca en NONE salvo para los bootstrap admins (ver config).
type CreateUserInput struct {
	AccountID   string
	Name        string
	Email       string
	Permissions types.Permission
}

// ListUsersFilter opciones para listar usuarios.
type ListUsersFilter struct {
	Limit  int // default 50, max 200
	Offset int
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// GetByAccountID busca un usuario por su account ID de Google.
	// Retorna ErrNotFound si no existe.
	GetByAccountID(ctx context.Context, accountID string) (*User, error)

	// Create crea un nuevo usuario.
	// Retorna ErrConflict si el accountID o email ya existen.
	Create(ctx context.Context, input CreateUserInput) (*User, error)

	// List lista usuarios con paginación.
	List(ctx context.Context, filter ListUsersFilter) ([]User, error)

	// SetPermissions reemplaza el bitmask de permisos de un usuario.
	SetPermissions(ctx context.Context, accountID string, perms types.Permission) error

	// Delete elimina un usuario.
	// Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, accountID string) error
}
