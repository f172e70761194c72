package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/breeze-mail/breeze/pkg/types"
)

func (r *PostgresBackend) CreateUser(ctx context.Context, email string) (*types.User, error) {
	query := `
		INSERT INTO app_user (email)
		VALUES ($1)
		RETURNING id, external_id, email, created_at
	`

	var u types.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.Id, &u.ExternalId, &u.Email, &u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (r *PostgresBackend) GetUser(ctx context.Context, id uint) (*types.User, error) {
	query := `
		SELECT id, external_id, email, created_at
		FROM app_user WHERE id = $1
	`

	var u types.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.Id, &u.ExternalId, &u.Email, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *PostgresBackend) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	query := `
		SELECT id, external_id, email, created_at
		FROM app_user WHERE email = $1
	`

	var u types.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.Id, &u.ExternalId, &u.Email, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %s", email)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}
