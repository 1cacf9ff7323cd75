package controllers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/events"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/result"
	"github.com/trrcms/trrcms/internal/services"
	"github.com/trrcms/trrcms/internal/store"
)

// UserController manages local accounts and sessions.
type UserController struct {
	Base
	users *store.UserRepository
	auth  *services.AuthService
}

// NewUserController creates the user controller.
func NewUserController(
	bus *events.Bus,
	logger zerolog.Logger,
	users *store.UserRepository,
	auth *services.AuthService,
) *UserController {
	return &UserController{
		Base:  NewBase("user", bus, logger),
		users: users,
		auth:  auth,
	}
}

// Login authenticates a user. Failed attempts count toward the account lock.
func (c *UserController) Login(ctx context.Context, username, password string) result.OperationResult[models.User] {
	res := ExecuteMsg(&c.Base, "login",
		"Login successful", "تم تسجيل الدخول بنجاح",
		func() (models.User, error) {
			return c.auth.Authenticate(ctx, username, password)
		})
	if res.Success {
		c.bus.Publish(events.UserLoggedIn, res.Data.UserID, res.Data.Role)
	}
	return res
}

// Create registers a new account.
func (c *UserController) Create(ctx context.Context, username, password, fullName, fullNameAr, role string) result.OperationResult[models.User] {
	return ExecuteMsg(&c.Base, "create",
		"User created successfully", "تم إنشاء المستخدم بنجاح",
		func() (models.User, error) {
			return c.auth.CreateUser(ctx, username, password, fullName, fullNameAr, role)
		})
}

// List returns all accounts.
func (c *UserController) List(ctx context.Context) result.OperationResult[[]models.User] {
	return Execute(&c.Base, "list", func() ([]models.User, error) {
		return c.users.List(ctx)
	})
}

// ChangePassword verifies the current password and stores the new one.
func (c *UserController) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) result.OperationResult[string] {
	return ExecuteMsg(&c.Base, "change_password",
		"Password changed successfully", "تم تغيير كلمة المرور بنجاح",
		func() (string, error) {
			if err := c.auth.ChangePassword(ctx, userID, currentPassword, newPassword); err != nil {
				return "", err
			}
			return userID, nil
		})
}

// Unlock clears an account lock.
func (c *UserController) Unlock(ctx context.Context, userID string) result.OperationResult[string] {
	return ExecuteMsg(&c.Base, "unlock",
		"Account unlocked", "تم إلغاء قفل الحساب",
		func() (string, error) {
			if err := c.auth.Unlock(ctx, userID); err != nil {
				return "", err
			}
			return userID, nil
		})
}
