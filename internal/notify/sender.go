package notify

import (
	"context"
	"log"

	"taskmarket/internal/models"
)

type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
}

// Sender implements services.Notifier: persist the row, then push it to any
// live websocket. Failures are logged, never returned — notifications must not
// fail the write that triggered them.
type Sender struct {
	Store NotificationStore
	Hub   *Hub
}

func (s *Sender) Notify(ctx context.Context, userID, kind, title, body, refID string) {
	n := &models.Notification{
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
	}
	if refID != "" {
		n.RefID = &refID
	}
	if err := s.Store.InsertNotification(ctx, n); err != nil {
		log.Printf("notification insert failed for user %s: %v", userID, err)
		return
	}
	if s.Hub != nil {
		s.Hub.Publish(n)
	}
}
