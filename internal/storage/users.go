package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tour-booking/internal/models"
)

const userColumns = "id, name, email, password_hash, role, created_at"

// CreateUser inserts u. ID and CreatedAt must already be set.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := db.conn.ExecContext(ctx, db.rebind(
		"INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)"),
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

func (db *DB) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	if err := db.conn.GetContext(ctx, &u, db.rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// UpdateUserRole changes the role of an existing user.
func (db *DB) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	res, err := db.conn.ExecContext(ctx, db.rebind("UPDATE users SET role = ? WHERE id = ?"), role, id)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return affectedOne(res)
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM users")
	return count, err
}
