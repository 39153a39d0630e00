// Package repository provides data access for user accounts.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

// User is one staff login.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	StaffName    string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, staff_name, role, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.StaffName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// GetByEmail looks a user up case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1
	`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// GetByStaffName resolves a staff member's login record from their
// display name. Used to route mail to assignees.
func (r *Repository) GetByStaffName(ctx context.Context, staffName string) (User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(staff_name) = $1
	`, strings.ToLower(strings.TrimSpace(staffName)))
	return scanUser(row)
}

// EmailFor returns the login address registered for a staff name.
func (r *Repository) EmailFor(ctx context.Context, staffName string) (string, error) {
	u, err := r.GetByStaffName(ctx, staffName)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

// List returns all users ordered by staff name. Password hashes are
// included; callers must not serialize them.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY staff_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
