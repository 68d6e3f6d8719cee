package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schooner-time/timeclock/internal/shared"
)

// Repository is the lookup surface the gate, login and time clock rely on.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const selectUser = `SELECT id, first_name, last_name, email, password_hash, role, created_at FROM users`

// FindByEmail looks a user up by case-insensitive email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, selectUser+` WHERE lower(email) = $1`, normalizeEmail(email))
	return scanUser(row)
}

// FindByID looks a user up by id.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.pool.QueryRow(ctx, selectUser+` WHERE id = $1`, id)
	return scanUser(row)
}

// ListUsers returns all users ordered by name.
func (r *PGRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, selectUser+` ORDER BY last_name, first_name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Upsert inserts u inside tx, or refreshes the row that already holds its email,
// and returns the stored id.
func Upsert(ctx context.Context, tx pgx.Tx, u User) (uuid.UUID, error) {
	if !u.Role.IsValid() {
		return uuid.Nil, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, u.Role)
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	var id uuid.UUID
	err := tx.QueryRow(ctx, upsertUserSQL,
		u.ID, u.FirstName, u.LastName, normalizeEmail(u.Email), u.PasswordHash, string(u.Role)).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("users: upsert %s: %w", normalizeEmail(u.Email), err)
	}
	return id, nil
}

const upsertUserSQL = `INSERT INTO users (id, first_name, last_name, email, password_hash, role)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (email) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
	password_hash = EXCLUDED.password_hash, role = EXCLUDED.role
RETURNING id`

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	parsed, err := shared.ParseRole(role)
	if err != nil {
		return User{}, fmt.Errorf("users: row %s: %w", u.ID, err)
	}
	u.Role = parsed
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ Repository = (*PGRepository)(nil)
