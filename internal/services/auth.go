package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/store"
)

const (
	// MaxFailedAttempts is how many consecutive bad passwords lock an account.
	MaxFailedAttempts = 5

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6
)

// AuthService authenticates local users and manages their credentials.
type AuthService struct {
	users  *store.UserRepository
	logger zerolog.Logger
}

// NewAuthService creates the authentication service.
func NewAuthService(users *store.UserRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Authenticate verifies a username and password. Each failure increments the
// account's failed-attempt counter; reaching MaxFailedAttempts locks the
// account. A success resets the counter and stamps the login time.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		var notFound *apperrors.ErrNotFound
		if errors.As(err, &notFound) {
			// Same reply as a wrong password, to avoid confirming usernames.
			return models.User{}, apperrors.NewUnauthorizedError("invalid username or password")
		}
		return models.User{}, err
	}

	if !user.IsActive {
		return models.User{}, apperrors.NewUnauthorizedError("account is disabled")
	}
	if user.IsLocked {
		return models.User{}, apperrors.NewUnauthorizedError("account is locked after too many failed attempts")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		attempts, incErr := s.users.IncrementFailedAttempts(ctx, user.UserID)
		if incErr != nil {
			return models.User{}, incErr
		}
		if attempts >= MaxFailedAttempts {
			if lockErr := s.users.SetLocked(ctx, user.UserID, true); lockErr != nil {
				return models.User{}, lockErr
			}
			s.logger.Warn().Str("username", username).Int("attempts", attempts).Msg("Account locked")
			return models.User{}, apperrors.NewUnauthorizedError("account is locked after too many failed attempts")
		}
		return models.User{}, apperrors.NewUnauthorizedError("invalid username or password")
	}

	if err := s.users.ResetFailedAttempts(ctx, user.UserID); err != nil {
		return models.User{}, err
	}
	if err := s.users.RecordLogin(ctx, user.UserID); err != nil {
		return models.User{}, err
	}

	s.logger.Info().Str("username", username).Str("role", user.Role).Msg("User authenticated")
	now := time.Now()
	user.FailedAttempts = 0
	user.LastLogin = &now
	return user, nil
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *AuthService) CreateUser(ctx context.Context, username, password, fullName, fullNameAr, role string) (models.User, error) {
	var fields []string
	if username == "" {
		fields = append(fields, "Missing required field: username")
	}
	if len(password) < MinPasswordLength {
		fields = append(fields, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(fields) > 0 {
		return models.User{}, apperrors.NewValidationError(fields...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.NewUser()
	user.Username = username
	user.PasswordHash = string(hash)
	user.FullName = fullName
	user.FullNameAr = fullNameAr
	if role != "" {
		user.Role = role
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ChangePassword verifies the current password, then stores a hash of the
// new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.NewUnauthorizedError("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.users.Update(ctx, &user)
}

// Unlock clears an account lock and its failed-attempt counter.
func (s *AuthService) Unlock(ctx context.Context, userID string) error {
	if err := s.users.SetLocked(ctx, userID, false); err != nil {
		return err
	}
	return s.users.ResetFailedAttempts(ctx, userID)
}
