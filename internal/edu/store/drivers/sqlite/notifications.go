package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
)

type notificationsRepo struct {
	db dbtx
}

const notificationColumns = `id, user_id, title, body, read, read_at, created_at`

func scanNotification(row interface{ Scan(...any) error }) (domain.Notification, error) {
	var (
		n      domain.Notification
		readAt sql.NullTime
	)
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Read, &readAt, &n.CreatedAt)
	n.ReadAt = mapNullTimePtr(readAt)
	return n, err
}

func (r *notificationsRepo) GetNotificationByID(ctx context.Context, id string) (domain.Notification, error) {
	n, err := scanNotification(r.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
	if err != nil {
		return domain.Notification{}, mapNotFound(err)
	}
	return n, nil
}

func (r *notificationsRepo) ListNotificationsByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationsRepo) CreateNotification(ctx context.Context, n domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, body)
		VALUES (?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Body)
	return mapConstraint(err)
}

func (r *notificationsRepo) MarkNotificationRead(ctx context.Context, id string, at time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1, read_at = ? WHERE id = ?`,
		at.UTC(), id))
}

func (r *notificationsRepo) MarkAllNotificationsRead(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1, read_at = ?
		WHERE user_id = ? AND read = 0`,
		at.UTC(), userID)
	return err
}

func (r *notificationsRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`,
		userID).Scan(&count)
	return count, err
}

func (r *notificationsRepo) DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE read = 1 AND read_at < ?`, cutoff.UTC())
	return err
}
