package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nba-predictions-go/models"
)

// SQLUserRepository stores accounts in the users table
type SQLUserRepository struct {
	db *SQLDB
}

// NewSQLUserRepository creates a repository over an open SQL handle
func NewSQLUserRepository(db *SQLDB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

func (r *SQLUserRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	query := r.db.rebind(`SELECT id, username, email, password, created_at, updated_at FROM users WHERE ` + where)
	var u models.User
	err := r.db.conn.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by their ID
func (r *SQLUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, `id = ?`, id)
}

// GetUserByEmail retrieves a user by their (normalized) email address
func (r *SQLUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `email = ?`, models.NormalizeEmail(email))
}

// GetUserByUsername retrieves a user by their username
func (r *SQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, `username = ?`, username)
}

// CreateUser inserts a new account
func (r *SQLUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	user.Email = models.NormalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	query := r.db.rebind(`INSERT INTO users (id, username, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.db.conn.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.Password, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUser rewrites username, email and password of an existing account
func (r *SQLUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	user.Email = models.NormalizeEmail(user.Email)
	user.UpdatedAt = time.Now().UTC()

	query := r.db.rebind(`UPDATE users SET username = ?, email = ?, password = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.conn.ExecContext(ctx, query, user.Username, user.Email, user.Password, user.UpdatedAt, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
