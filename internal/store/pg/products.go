package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socis-ca/website/internal/domain/repository"
)

type productRepo struct{ pool *pgxpool.Pool }

const productCols = `id, name, description, price_cents, image_path, available, created_at`

func (r *productRepo) GetByID(ctx context.Context, id string) (*repository.Product, error) {
	const q = `SELECT ` + productCols + ` FROM product WHERE id = $1`
	var p repository.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.ImagePath, &p.Available, &p.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter repository.ProductFilter) ([]repository.Product, error) {
	q := `SELECT ` + productCols + ` FROM product`
	if filter.OnlyAvailable {
		q += ` WHERE available`
	}
	q += ` ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, q, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Product
	for rows.Next() {
		var p repository.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.ImagePath, &p.Available, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productRepo) Create(ctx context.Context, p *repository.Product) (*repository.Product, error) {
	const q = `INSERT INTO product (name, description, price_cents, image_path, available)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING id, created_at`
	out := *p
	err := r.pool.QueryRow(ctx, q,
		p.Name, p.Description, p.PriceCents, p.ImagePath, p.Available,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *productRepo) Update(ctx context.Context, p *repository.Product) error {
	const q = `UPDATE product
	           SET name = $2, description = $3, price_cents = $4,
	               image_path = $5, available = $6
	           WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q,
		p.ID, p.Name, p.Description, p.PriceCents, p.ImagePath, p.Available,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
