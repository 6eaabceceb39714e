package http

import (
	"context"
	"net/http"

	"taskmarket/internal/models"
	"taskmarket/internal/notify"
	"taskmarket/internal/services"
)

type NotificationStore interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
}

type Handler struct {
	Users         *services.UserService
	Tasks         *services.TaskService
	Submissions   *services.SubmissionService
	Consensus     *services.ConsensusService
	Payments      *services.PaymentService
	Disputes      *services.DisputeService
	Notifications NotificationStore
	Hub           *notify.Hub
	WebhookSecret []byte
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
