package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socis-ca/website/internal/domain/repository"
	"github.com/socis-ca/website/internal/domain/types"
)

type userRepo struct{ pool *pgxpool.Pool }

func (r *userRepo) GetByAccountID(ctx context.Context, accountID string) (*repository.User, error) {
	const q = `SELECT account_id, name, email, permissions, created_at
	           FROM app_user WHERE account_id = $1`
	var u repository.User
	var perms int
	err := r.pool.QueryRow(ctx, q, accountID).Scan(&u.AccountID, &u.Name, &u.Email, &perms, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	u.Permissions = types.Permission(perms)
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, input repository.CreateUserInput) (*repository.User, error) {
	const q = `INSERT INTO app_user (account_id, name, email, permissions)
	           VALUES ($1, $2, $3, $4)
	           RETURNING account_id, name, email, permissions, created_at`
	var u repository.User
	var perms int
	err := r.pool.QueryRow(ctx, q,
		input.AccountID, input.Name, input.Email, int(input.Permissions),
	).Scan(&u.AccountID, &u.Name, &u.Email, &perms, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	u.Permissions = types.Permission(perms)
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, filter repository.ListUsersFilter) ([]repository.User, error) {
	const q = `SELECT account_id, name, email, permissions, created_at
	           FROM app_user ORDER BY created_at, account_id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.User
	for rows.Next() {
		var u repository.User
		var perms int
		if err := rows.Scan(&u.AccountID, &u.Name, &u.Email, &perms, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Permissions = types.Permission(perms)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *userRepo) SetPermissions(ctx context.Context, accountID string, perms types.Permission) error {
	const q = `UPDATE app_user SET permissions = $2 WHERE account_id = $1`
	tag, err := r.pool.Exec(ctx, q, accountID, int(perms))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, accountID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM app_user WHERE account_id = $1`, accountID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
