package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/models"
)

// UserRepository persists local user accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a user repository over db.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, username, password_hash, email, full_name, full_name_ar,
	role, is_active, is_locked, failed_attempts, last_login, last_activity,
	created_at, updated_at, created_by`

// Create inserts a new user account.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.UserID, u.Username, u.PasswordHash, nullString(u.Email), u.FullName, u.FullNameAr,
		u.Role, boolToInt(u.IsActive), boolToInt(u.IsLocked), u.FailedAttempts,
		formatTimePtr(u.LastLogin), formatTimePtr(u.LastActivity),
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt), nullString(u.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.Username, err)
	}
	return nil
}

// GetByUsername returns the user with the given username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.NewNotFoundError("User", username)
	}
	return u, err
}

// Get returns the user with the given ID.
func (r *UserRepository) Get(ctx context.Context, userID string) (models.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE user_id = ?", userID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.NewNotFoundError("User", userID)
	}
	return u, err
}

// List returns all users ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update persists mutable account fields and bumps updated_at.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			username = ?, password_hash = ?, email = ?, full_name = ?, full_name_ar = ?,
			role = ?, is_active = ?, is_locked = ?, failed_attempts = ?, updated_at = ?
		WHERE user_id = ?`,
		u.Username, u.PasswordHash, nullString(u.Email), u.FullName, u.FullNameAr,
		u.Role, boolToInt(u.IsActive), boolToInt(u.IsLocked), u.FailedAttempts, formatTime(u.UpdatedAt),
		u.UserID,
	)
	if err != nil {
		return fmt.Errorf("update user %s: %w", u.UserID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("User", u.UserID)
	}
	return nil
}

// IncrementFailedAttempts bumps the failed login counter and returns the new
// count.
func (r *UserRepository) IncrementFailedAttempts(ctx context.Context, userID string) (int, error) {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET failed_attempts = failed_attempts + 1 WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx,
		"SELECT failed_attempts FROM users WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

// ResetFailedAttempts clears the failed login counter.
func (r *UserRepository) ResetFailedAttempts(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET failed_attempts = 0 WHERE user_id = ?", userID)
	return err
}

// SetLocked sets or clears the account lock.
func (r *UserRepository) SetLocked(ctx context.Context, userID string, locked bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET is_locked = ? WHERE user_id = ?", boolToInt(locked), userID)
	return err
}

// RecordLogin stamps last_login and last_activity with the current time.
func (r *UserRepository) RecordLogin(ctx context.Context, userID string) error {
	now := formatTime(time.Now())
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET last_login = ?, last_activity = ? WHERE user_id = ?", now, now, userID)
	return err
}

// RecordActivity stamps last_activity with the current time.
func (r *UserRepository) RecordActivity(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET last_activity = ? WHERE user_id = ?", formatTime(time.Now()), userID)
	return err
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var email, lastLogin, lastActivity, createdAt, updatedAt, createdBy sql.NullString
	var isActive, isLocked int

	err := row.Scan(
		&u.UserID, &u.Username, &u.PasswordHash, &email, &u.FullName, &u.FullNameAr,
		&u.Role, &isActive, &isLocked, &u.FailedAttempts, &lastLogin, &lastActivity,
		&createdAt, &updatedAt, &createdBy,
	)
	if err != nil {
		return models.User{}, err
	}

	u.Email = email.String
	u.IsActive = isActive != 0
	u.IsLocked = isLocked != 0
	u.LastLogin = parseTimePtr(lastLogin)
	u.LastActivity = parseTimePtr(lastActivity)
	u.CreatedAt = parseTimeValue(createdAt)
	u.UpdatedAt = parseTimeValue(updatedAt)
	u.CreatedBy = createdBy.String
	return u, nil
}
