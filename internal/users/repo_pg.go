package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"visaverse-backend/internal/shared/storage/db"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		return insertUser(ctx, tx, user)
	})
}

// CreateFirst locks the users table so concurrent first logins cannot both
// insert.
func (r *PGRepo) CreateFirst(ctx context.Context, user User) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrUsersExist
		}
		return insertUser(ctx, tx, user)
	})
}

func insertUser(ctx context.Context, tx *sql.Tx, user User) error {
	const query = `
INSERT INTO users (id, email, password_hash, organization_id, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		nullableString(user.OrganizationID),
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	for _, role := range user.Roles {
		if _, err := tx.ExecContext(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, user.ID, role); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `
SELECT id, email, password_hash, organization_id, is_active, created_at, updated_at
FROM users
WHERE email = $1
LIMIT 1`, email)
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.getOne(ctx, `
SELECT id, email, password_hash, organization_id, is_active, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`, userID)
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (User, error) {
	var user User
	var orgID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&orgID,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.OrganizationID = orgID.String

	rows, err := r.DB.QueryContext(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, user.ID)
	if err != nil {
		return User{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return User{}, err
		}
		user.Roles = append(user.Roles, role)
	}
	return user, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
