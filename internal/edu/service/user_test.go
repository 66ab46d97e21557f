package service

import (
	"context"
	"testing"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st}

	t.Run("normalizes the email", func(t *testing.T) {
		user, err := svc.Register(ctx, "  Alice@Uni.EDU ", "password123!", "Alice", "Nguyen", domain.RoleStudent)
		require.NoError(t, err)
		require.Equal(t, "alice@uni.edu", user.Email)
		require.True(t, user.IsActive)
		require.False(t, user.CreatedAt.IsZero())
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice@uni.edu", "password123!", "Other", "Alice", domain.RoleTeacher)
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("admin accounts cannot self-register", func(t *testing.T) {
		_, err := svc.Register(ctx, "root@uni.edu", "password123!", "Root", "User", domain.RoleAdmin)
		require.ErrorIs(t, err, ErrRoleNotPermitted)
	})

	t.Run("admin path allows any role", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, "root@uni.edu", "password123!", "Root", "User", domain.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, user.Role)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "weird@uni.edu", "password123!", "W", "E", domain.Role("superuser"))
		require.ErrorIs(t, err, ErrRoleNotPermitted)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st}

	user, err := svc.Register(ctx, "update@uni.edu", "password123!", "Before", "Change", domain.RoleStudent)
	require.NoError(t, err)
	taken, err := svc.Register(ctx, "taken@uni.edu", "password123!", "Already", "There", domain.RoleStudent)
	require.NoError(t, err)

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		first := "After"
		updated, err := svc.UpdateProfile(ctx, user.ID, domain.UserUpdate{FirstName: &first})
		require.NoError(t, err)
		require.Equal(t, "After", updated.FirstName)
		require.Equal(t, "Change", updated.LastName)
		require.Equal(t, "update@uni.edu", updated.Email)
	})

	t.Run("email change collides with existing account", func(t *testing.T) {
		email := taken.Email
		_, err := svc.UpdateProfile(ctx, user.ID, domain.UserUpdate{Email: &email})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("unknown user", func(t *testing.T) {
		first := "X"
		_, err := svc.UpdateProfile(ctx, "missing", domain.UserUpdate{FirstName: &first})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestChangePasswordKillsSessions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	userSvc := &UserService{Store: st}
	authSvc, _ := newAuthService(t, st)

	user, err := userSvc.Register(ctx, "rotate@uni.edu", "old password!", "Ro", "Tate", domain.RoleTeacher)
	require.NoError(t, err)

	pair, err := authSvc.Login(ctx, "rotate@uni.edu", "old password!")
	require.NoError(t, err)

	t.Run("wrong current password refused", func(t *testing.T) {
		err := userSvc.ChangePassword(ctx, user.ID, "not the password", "new password!")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	require.NoError(t, userSvc.ChangePassword(ctx, user.ID, "old password!", "new password!"))

	t.Run("outstanding refresh tokens are revoked", func(t *testing.T) {
		_, err := authSvc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("new password logs in", func(t *testing.T) {
		_, err := authSvc.Login(ctx, "rotate@uni.edu", "new password!")
		require.NoError(t, err)
	})

	t.Run("old password does not", func(t *testing.T) {
		_, err := authSvc.Login(ctx, "rotate@uni.edu", "old password!")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	userSvc := &UserService{Store: st}
	authSvc, _ := newAuthService(t, st)

	user, err := userSvc.Register(ctx, "toggle@uni.edu", "password123!", "Tog", "Gle", domain.RoleAnalyst)
	require.NoError(t, err)

	pair, err := authSvc.Login(ctx, "toggle@uni.edu", "password123!")
	require.NoError(t, err)

	require.NoError(t, userSvc.SetActive(ctx, user.ID, false))

	t.Run("deactivation revokes refresh tokens", func(t *testing.T) {
		_, err := authSvc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		_, err := authSvc.Login(ctx, "toggle@uni.edu", "password123!")
		require.ErrorIs(t, err, ErrAccountDisabled)
	})

	t.Run("reactivation restores login", func(t *testing.T) {
		require.NoError(t, userSvc.SetActive(ctx, user.ID, true))
		_, err := authSvc.Login(ctx, "toggle@uni.edu", "password123!")
		require.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		require.ErrorIs(t, userSvc.SetActive(ctx, "missing", true), ErrUserNotFound)
	})
}
