package repository

import (
	"context"
	"time"
)

// Event es un evento del club (charlas, game nights, etc).
type Event struct {
	ID          string
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	Description string
	Location    string
	Tags        []string
	CreatedAt   time.Time
}

// EventFilter opciones para listar eventos.
type EventFilter struct {
	Limit  int
	Offset int
	// After filtra eventos que terminan después del instante dado (próximos).
	After *time.Time
}

// EventRepository define operaciones sobre eventos.
type EventRepository interface {
	// GetByID retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]Event, error)
	Create(ctx context.Context, ev *Event) (*Event, error)
	Update(ctx context.Context, ev *Event) error
	Delete(ctx context.Context, id string) error
}
