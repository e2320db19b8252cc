package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socis-ca/website/internal/domain/repository"
)

type execRepo struct{ pool *pgxpool.Pool }

// "order" es palabra reservada; la columna se llama ord.
const execCols = `id, ord, name, role, email, year`

func (r *execRepo) GetByID(ctx context.Context, id string) (*repository.Exec, error) {
	const q = `SELECT ` + execCols + ` FROM exec WHERE id = $1`
	var e repository.Exec
	err := r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.Order, &e.Name, &e.Role, &e.Email, &e.Year)
	if err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

func (r *execRepo) List(ctx context.Context, filter repository.ExecFilter) ([]repository.Exec, error) {
	q := `SELECT ` + execCols + ` FROM exec`
	args := []any{clampLimit(filter.Limit), filter.Offset}
	if filter.Year > 0 {
		q += ` WHERE year = $3`
		args = append(args, filter.Year)
	}
	q += ` ORDER BY year DESC, ord LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Exec
	for rows.Next() {
		var e repository.Exec
		if err := rows.Scan(&e.ID, &e.Order, &e.Name, &e.Role, &e.Email, &e.Year); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *execRepo) Create(ctx context.Context, e *repository.Exec) (*repository.Exec, error) {
	const q = `INSERT INTO exec (ord, name, role, email, year)
	           VALUES ($1, $2, $3, $4, $5) RETURNING id`
	out := *e
	err := r.pool.QueryRow(ctx, q, e.Order, e.Name, e.Role, e.Email, e.Year).Scan(&out.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *execRepo) Update(ctx context.Context, e *repository.Exec) error {
	const q = `UPDATE exec
	           SET ord = $2, name = $3, role = $4, email = $5, year = $6
	           WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, e.ID, e.Order, e.Name, e.Role, e.Email, e.Year)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *execRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exec WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
