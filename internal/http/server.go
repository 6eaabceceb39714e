package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"taskmarket/internal/auth"
	"taskmarket/internal/metrics"
)

type Server struct {
	Router *chi.Mux
}

func NewServer(handler *Handler, sessions SessionStore, tokens auth.TokenIssuer, allowedOrigins []string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(metricsMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	r.Use(authMiddleware(tokens, sessions))

	r.Get("/health", handler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/auth/verify", handler.VerifyIdentity)

	// Webhook authenticates with its HMAC signature, not a session.
	r.Post("/payments/webhook", handler.PaymentWebhook)

	r.Get("/tasks", handler.ListTasks)
	r.Get("/tasks/{taskId}", handler.GetTask)
	r.Get("/tasks/{taskId}/consensus", handler.TaskConsensus)
	r.Get("/categories", handler.ListCategories)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/users/me", handler.Me)

		r.Post("/tasks", handler.CreateTask)
		r.Patch("/tasks/{taskId}", handler.UpdateTask)
		r.Delete("/tasks/{taskId}", handler.DeleteTask)
		r.Post("/tasks/{taskId}/submit", handler.SubmitToTask)

		r.Get("/submissions", handler.ListMySubmissions)
		r.Get("/submissions/{submissionId}", handler.GetSubmission)
		r.Post("/submissions/{submissionId}/claim", handler.ClaimSubmission)
		r.Post("/submissions/{submissionId}/review", handler.ReviewSubmission)
		r.Post("/submissions/{submissionId}/dispute", handler.OpenDispute)

		r.Get("/disputes/{disputeId}", handler.GetDispute)
		r.Post("/disputes/{disputeId}/resolve", handler.ResolveDispute)

		r.Post("/payments", handler.CreatePayment)
		r.Get("/payments/{paymentId}", handler.GetPayment)
		r.Patch("/payments/{paymentId}/confirm", handler.ConfirmPayment)

		r.Get("/notifications", handler.ListNotificationsHandler)
		r.Post("/notifications/{notificationId}/read", handler.MarkNotificationRead)
		r.Get("/ws/notifications", handler.NotificationStream)
	})

	return &Server{Router: r}
}
