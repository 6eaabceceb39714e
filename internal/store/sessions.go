package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskmarket/internal/models"
)

func (s *Store) CreateSession(ctx context.Context, userID string, expiresAt time.Time) (*models.Session, error) {
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO user_sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, sess.ID, sess.UserID, sess.ExpiresAt)
	if err := row.Scan(&sess.CreatedAt); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSessionUser resolves a live session to its user in one round trip.
func (s *Store) GetSessionUser(ctx context.Context, sessionID string, now time.Time) (*models.User, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE id = (
			SELECT user_id FROM user_sessions WHERE id=$1 AND expires_at > $2
		)
	`, sessionID, now)
	user, err := scanUser(row)
	if isNoRows(err) {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.ErrUserInactive
	}
	return user, nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM user_sessions WHERE id=$1`, sessionID)
	return err
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.Pool.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}
