package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socis-ca/website/internal/domain/repository"
)

type challengeRepo struct{ pool *pgxpool.Pool }

const challengeCols = `id, challenge_number, description, goal, parameters, points,
	image_path, map_path, hidden, year`

func (r *challengeRepo) GetByID(ctx context.Context, id string) (*repository.Challenge, error) {
	const q = `SELECT ` + challengeCols + ` FROM roboticon_challenge WHERE id = $1`
	var c repository.Challenge
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&c.ID, &c.ChallengeNumber, &c.Description, &c.Goal, &c.Parameters,
		&c.Points, &c.ImagePath, &c.MapPath, &c.Hidden, &c.Year,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *challengeRepo) List(ctx context.Context, filter repository.ChallengeFilter) ([]repository.Challenge, error) {
	q := `SELECT ` + challengeCols + ` FROM roboticon_challenge`
	args := []any{clampLimit(filter.Limit), filter.Offset}

	where := ""
	if !filter.IncludeHidden {
		where = ` WHERE NOT hidden`
	}
	if filter.Year > 0 {
		if where == "" {
			where = fmt.Sprintf(` WHERE year = $%d`, len(args)+1)
		} else {
			where += fmt.Sprintf(` AND year = $%d`, len(args)+1)
		}
		args = append(args, filter.Year)
	}
	q += where + ` ORDER BY year DESC, challenge_number LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Challenge
	for rows.Next() {
		var c repository.Challenge
		if err := rows.Scan(
			&c.ID, &c.ChallengeNumber, &c.Description, &c.Goal, &c.Parameters,
			&c.Points, &c.ImagePath, &c.MapPath, &c.Hidden, &c.Year,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *challengeRepo) Create(ctx context.Context, c *repository.Challenge) (*repository.Challenge, error) {
	const q = `INSERT INTO roboticon_challenge
	           (challenge_number, description, goal, parameters, points,
	            image_path, map_path, hidden, year)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	           RETURNING id`
	out := *c
	err := r.pool.QueryRow(ctx, q,
		c.ChallengeNumber, c.Description, c.Goal, c.Parameters, c.Points,
		c.ImagePath, c.MapPath, c.Hidden, c.Year,
	).Scan(&out.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *challengeRepo) Update(ctx context.Context, c *repository.Challenge) error {
	const q = `UPDATE roboticon_challenge
	           SET challenge_number = $2, description = $3, goal = $4,
	               parameters = $5, points = $6, image_path = $7,
	               map_path = $8, hidden = $9, year = $10
	           WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q,
		c.ID, c.ChallengeNumber, c.Description, c.Goal, c.Parameters,
		c.Points, c.ImagePath, c.MapPath, c.Hidden, c.Year,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *challengeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roboticon_challenge WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
