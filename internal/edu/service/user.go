package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/pkg/cryptox"
	"github.com/edupredict/edupredict/pkg/idx"
	"github.com/edupredict/edupredict/pkg/slogx"
)

var (
	ErrEmailTaken       = errors.New("email_taken")
	ErrRoleNotPermitted = errors.New("role_not_permitted")
	ErrUserNotFound     = errors.New("user_not_found")
)

// UserService owns account lifecycle: self-service registration, the admin
// user CRUD, profile updates and password changes.
type UserService struct {
	Store store.Store
}

// Register creates an account through the public endpoint. Admin accounts
// cannot be self-registered; they are created by an existing admin.
func (s *UserService) Register(ctx context.Context, email, password, firstName, lastName string, role domain.Role) (domain.User, error) {
	if role == domain.RoleAdmin {
		return domain.User{}, ErrRoleNotPermitted
	}
	return s.createUser(ctx, email, password, firstName, lastName, role)
}

// CreateUser is the admin path; any role is allowed.
func (s *UserService) CreateUser(ctx context.Context, email, password, firstName, lastName string, role domain.Role) (domain.User, error) {
	return s.createUser(ctx, email, password, firstName, lastName, role)
}

func (s *UserService) createUser(ctx context.Context, email, password, firstName, lastName string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, ErrRoleNotPermitted
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		IsActive:     true,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user created",
		slog.String("user_id", user.ID),
		slog.String("role", role.String()),
	)

	// re-read so DB-assigned timestamps are populated
	return s.Store.Users().GetUserByID(ctx, user.ID)
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// ListUsers returns every account. Admin only at the HTTP layer.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// UpdateProfile applies a partial profile update and returns the new state.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd domain.UserUpdate) (domain.User, error) {
	if upd.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*upd.Email))
		upd.Email = &normalized
	}

	if err := s.Store.Users().UpdateUserProfile(ctx, userID, upd); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, userID)
}

// ChangePassword verifies the current password before setting a new one.
// All refresh tokens are revoked so stolen sessions die with the old
// password.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID)
	})
}

// SetActive toggles an account. Deactivation revokes all refresh tokens in
// the same transaction so the account can't refresh its way back in.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetUserActive(ctx, userID, active); err != nil {
			return err
		}
		if !active {
			return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID)
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// DeleteUser removes the account and, via FK cascade, its tokens and
// notifications.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	err := s.Store.Users().DeleteUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
