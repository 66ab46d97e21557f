package service

import (
	"context"
	"testing"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/stretchr/testify/require"
)

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &NotificationService{Store: st}

	alice := seedUser(t, st, "alice@uni.edu", "password123!", domain.RoleStudent, true)
	bob := seedUser(t, st, "bob@uni.edu", "password123!", domain.RoleStudent, true)

	t.Run("unknown recipient refused", func(t *testing.T) {
		_, err := svc.Notify(ctx, "ghost", "Hello", "...")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	first, err := svc.Notify(ctx, alice.ID, "Enrollment open", "Semester 2 enrollment is open.")
	require.NoError(t, err)
	_, err = svc.Notify(ctx, alice.ID, "Grades posted", "CS201 grades are up.")
	require.NoError(t, err)

	t.Run("unread filter", func(t *testing.T) {
		all, err := svc.List(ctx, alice.ID, false)
		require.NoError(t, err)
		require.Len(t, all, 2)

		require.NoError(t, svc.MarkRead(ctx, alice.ID, first.ID))

		unread, err := svc.List(ctx, alice.ID, true)
		require.NoError(t, err)
		require.Len(t, unread, 1)

		count, err := svc.CountUnread(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("marking read twice is a no-op", func(t *testing.T) {
		require.NoError(t, svc.MarkRead(ctx, alice.ID, first.ID))
	})

	t.Run("cannot touch another user's notification", func(t *testing.T) {
		require.ErrorIs(t, svc.MarkRead(ctx, bob.ID, first.ID), ErrNotYourNotification)
	})

	t.Run("mark all read", func(t *testing.T) {
		require.NoError(t, svc.MarkAllRead(ctx, alice.ID))
		count, err := svc.CountUnread(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, 0, count)
	})
}
