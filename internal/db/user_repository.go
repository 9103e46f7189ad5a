package db

import (
	"context"
	"errors"

	"github.com/Flarenzy/simple-auth-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	findUserByID = `
SELECT id, email, first_name, last_name, role, COALESCE(password, ''), auth_provider, is_active, created_at, updated_at
FROM users
WHERE id = $1`

	createUser = `
INSERT INTO users (id, email, first_name, last_name, role, password, auth_provider, is_active)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
RETURNING id, email, first_name, last_name, role, COALESCE(password, ''), auth_provider, is_active, created_at, updated_at`

	uniqueViolation = "23505"
)

type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, findUserByID, id))
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, record domain.CreateUserRecord) (domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, createUser,
		uuid.NewString(),
		record.Email,
		record.FirstName,
		record.LastName,
		record.Role,
		record.CredentialHash,
		record.AuthProvider,
		record.IsActive,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrConflict
		}
		return domain.User{}, err
	}

	return user, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.CredentialHash,
		&user.AuthProvider,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
