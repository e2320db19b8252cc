package repository

import (
	"context"
	"time"
)

// Product es un ítem del merch store (remeras, stickers, etc).
// PriceCents evita floats para plata.
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int64
	ImagePath   string
	Available   bool
	CreatedAt   time.Time
}

// ProductFilter opciones para listar productos.
type ProductFilter struct {
	Limit         int
	Offset        int
	OnlyAvailable bool
}

// ProductRepository define operaciones sobre productos.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
