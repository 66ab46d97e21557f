package service

import (
	"context"
	"errors"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/pkg/idx"
)

var (
	ErrNotificationNotFound = errors.New("notification_not_found")
	ErrNotYourNotification  = errors.New("not_your_notification")
)

// NotificationService delivers in-app notices to users.
type NotificationService struct {
	Store store.Store
}

func (s *NotificationService) Notify(ctx context.Context, userID, title, body string) (domain.Notification, error) {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Notification{}, ErrUserNotFound
		}
		return domain.Notification{}, err
	}

	n := domain.Notification{
		ID:     idx.New().String(),
		UserID: userID,
		Title:  title,
		Body:   body,
	}
	if err := s.Store.Notifications().CreateNotification(ctx, n); err != nil {
		return domain.Notification{}, err
	}
	return s.Store.Notifications().GetNotificationByID(ctx, n.ID)
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	return s.Store.Notifications().ListNotificationsByUser(ctx, userID, unreadOnly)
}

// MarkRead marks one notification as read. Callers may only touch their
// own notifications.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.Store.Notifications().GetNotificationByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if n.UserID != userID {
		return ErrNotYourNotification
	}
	if n.Read {
		return nil // already read, nothing to do
	}
	return s.Store.Notifications().MarkNotificationRead(ctx, notificationID, time.Now())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.Store.Notifications().MarkAllNotificationsRead(ctx, userID, time.Now())
}

func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.Store.Notifications().CountUnread(ctx, userID)
}
