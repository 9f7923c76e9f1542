package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// UserRepository defines persistence access for ERP users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, nick, passwordHash string) error
	GetByNick(ctx context.Context, nick string) (*domain.User, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (nick, email, password_hash, admin, enabled)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		user.Nick,
		user.Email,
		user.PasswordHash,
		user.Admin,
		user.Enabled,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) UpdatePassword(ctx context.Context, nick, passwordHash string) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash=$1, updated_at=NOW() WHERE nick=$2`,
		passwordHash, nick,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByNick(ctx context.Context, nick string) (*domain.User, error) {
	const query = `
        SELECT nick, email, password_hash, admin, enabled, created_at, updated_at
        FROM users WHERE nick=$1`

	var user domain.User
	if err := r.db.QueryRow(ctx, query, nick).Scan(
		&user.Nick,
		&user.Email,
		&user.PasswordHash,
		&user.Admin,
		&user.Enabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
