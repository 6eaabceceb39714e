package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"taskmarket/internal/models"
)

func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, kind, title, body, ref_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, n.ID, n.UserID, n.Kind, n.Title, n.Body, n.RefID)
	return row.Scan(&n.CreatedAt)
}

func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, user_id, kind, title, body, ref_id, is_read, created_at
		FROM notifications
		WHERE user_id=$1 AND (NOT $2 OR is_read = false)
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		var refID sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &refID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if refID.Valid {
			n.RefID = &refID.String
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	res, err := s.Pool.Exec(ctx, `
		UPDATE notifications SET is_read=true WHERE id=$1 AND user_id=$2
	`, notificationID, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return models.ErrNotPermitted
	}
	return nil
}
