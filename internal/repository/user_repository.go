package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shortify-be/internal/entities"
)

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	MarkVerified(ctx context.Context, email string) error
	DeletePending(ctx context.Context, id string) error
	DeleteExpiredUnverified(ctx context.Context, createdBefore time.Time) (int64, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, full_name, email, password_hash, is_verified, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*entities.User, error) {
	var (
		user entities.User
		hash sql.NullString
	)
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&hash,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if hash.Valid {
		user.PasswordHash = &hash.String
	}
	return &user, nil
}

// Create inserts a new user. A nil PasswordHash stores NULL (no local password).
func (r *userRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	query := `
		INSERT INTO users (full_name, email, password_hash, is_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	var hash sql.NullString
	if user.PasswordHash != nil {
		hash = sql.NullString{String: *user.PasswordHash, Valid: true}
	}

	created, err := scanUser(r.db.QueryRowContext(ctx, query, user.FullName, user.Email, hash, user.IsVerified))
	if err != nil {
		if uniqueConstraint(err) == "users_email_key" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// FindByEmail finds a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// FindByID finds a user by ID (UUID)
func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// MarkVerified flips is_verified for the given email
func (r *userRepository) MarkVerified(ctx context.Context, email string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET is_verified = TRUE, updated_at = NOW()
		WHERE email = $1
	`, email)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeletePending removes a single unverified user. Verified users are never touched.
func (r *userRepository) DeletePending(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1 AND is_verified = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending user: %w", err)
	}
	return nil
}

// DeleteExpiredUnverified removes unverified users created before the cutoff
func (r *userRepository) DeleteExpiredUnverified(ctx context.Context, createdBefore time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM users
		WHERE is_verified = FALSE AND created_at < $1
	`, createdBefore.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge unverified users: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
