package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/jobswap-backend/internal/core/notification"
	pgdb "github.com/ogurasousui/jobswap-backend/internal/platform/db/postgres"
)

// NotificationRepository は PostgreSQL を利用した通知永続化の実装です。
type NotificationRepository struct {
	pool pgdb.Queryer
}

// NewNotificationRepository は NotificationRepository を生成します。
func NewNotificationRepository(pool pgdb.Queryer) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

const notificationColumns = "id, user_id, kind, title, body, related_id, read, created_at"

// Create は通知を新規作成します。
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO notifications (`+notificationColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, n.ID, n.UserID, string(n.Kind), n.Title, n.Body, n.RelatedID, n.Read, n.CreatedAt)
	return err
}

// FindByID は ID で通知を取得します。
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*notification.Notification, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+notificationColumns+`
          FROM notifications
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanNotification(row)
}

// ListByUser はユーザー宛の通知を新しい順に返します。
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+notificationColumns+`
          FROM notifications
         WHERE user_id = $1
         ORDER BY created_at DESC, id DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountUnread はユーザーの未読通知数を返します。
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT read
    `, userID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead は通知を既読にします。
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE notifications SET read = TRUE WHERE id = $1
    `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead はユーザー宛の未読通知をすべて既読にします。
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read
    `, userID)
	return err
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n    notification.Notification
		kind string
	)
	if err := row.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Body, &n.RelatedID, &n.Read, &n.CreatedAt); err != nil {
		if isNoRows(err) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}
	n.Kind = notification.Kind(kind)
	return &n, nil
}
