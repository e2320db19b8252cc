package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socis-ca/website/internal/domain/repository"
)

type subscriberRepo struct{ pool *pgxpool.Pool }

// Subscribe es idempotente: un email ya suscripto devuelve la fila
// existente gracias al upsert.
func (r *subscriberRepo) Subscribe(ctx context.Context, email string) (*repository.Subscriber, error) {
	const q = `INSERT INTO newsletter_subscriber (email)
	           VALUES ($1)
	           ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
	           RETURNING id, email, subscribed_at`
	var s repository.Subscriber
	err := r.pool.QueryRow(ctx, q, email).Scan(&s.ID, &s.Email, &s.SubscribedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func (r *subscriberRepo) Unsubscribe(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM newsletter_subscriber WHERE email = $1`, email)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *subscriberRepo) List(ctx context.Context, limit, offset int) ([]repository.Subscriber, error) {
	const q = `SELECT id, email, subscribed_at FROM newsletter_subscriber
	           ORDER BY subscribed_at, id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Subscriber
	for rows.Next() {
		var s repository.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.SubscribedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
