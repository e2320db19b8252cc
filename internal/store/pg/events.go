package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socis-ca/website/internal/domain/repository"
)

type eventRepo struct{ pool *pgxpool.Pool }

const eventCols = `id, title, start_time, end_time, description, location, tags, created_at`

func (r *eventRepo) GetByID(ctx context.Context, id string) (*repository.Event, error) {
	const q = `SELECT ` + eventCols + ` FROM event WHERE id = $1`
	var ev repository.Event
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&ev.ID, &ev.Title, &ev.StartTime, &ev.EndTime,
		&ev.Description, &ev.Location, &ev.Tags, &ev.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &ev, nil
}

func (r *eventRepo) List(ctx context.Context, filter repository.EventFilter) ([]repository.Event, error) {
	q := `SELECT ` + eventCols + ` FROM event`
	args := []any{clampLimit(filter.Limit), filter.Offset}
	if filter.After != nil {
		q += ` WHERE end_time > $3`
		args = append(args, *filter.After)
	}
	q += ` ORDER BY start_time LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Event
	for rows.Next() {
		var ev repository.Event
		if err := rows.Scan(
			&ev.ID, &ev.Title, &ev.StartTime, &ev.EndTime,
			&ev.Description, &ev.Location, &ev.Tags, &ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) Create(ctx context.Context, ev *repository.Event) (*repository.Event, error) {
	const q = `INSERT INTO event (title, start_time, end_time, description, location, tags)
	           VALUES ($1, $2, $3, $4, $5, $6)
	           RETURNING id, created_at`
	tags := ev.Tags
	if tags == nil {
		tags = []string{}
	}
	out := *ev
	err := r.pool.QueryRow(ctx, q,
		ev.Title, ev.StartTime, ev.EndTime, ev.Description, ev.Location, tags,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *eventRepo) Update(ctx context.Context, ev *repository.Event) error {
	const q = `UPDATE event
	           SET title = $2, start_time = $3, end_time = $4,
	               description = $5, location = $6, tags = $7
	           WHERE id = $1`
	tags := ev.Tags
	if tags == nil {
		tags = []string{}
	}
	tag, err := r.pool.Exec(ctx, q,
		ev.ID, ev.Title, ev.StartTime, ev.EndTime, ev.Description, ev.Location, tags,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM event WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
