package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"taskmarket/internal/metrics"
	"taskmarket/internal/payrail"
	"taskmarket/internal/services"
)

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var in services.CreatePaymentInput
	if !decodeBody(w, r, &in) {
		return
	}
	payment, err := h.Payments.Create(r.Context(), currentUser(r), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewPayment(payment))
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.Payments.Get(r.Context(), currentUser(r), chi.URLParam(r, "paymentId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewPayment(payment))
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	payment, settled, err := h.Payments.Confirm(r.Context(), currentUser(r), chi.URLParam(r, "paymentId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if settled && payment.Status.Terminal() {
		metrics.PaymentsSettledTotal.WithLabelValues(string(payment.Status)).Inc()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payment":   viewPayment(payment),
		"confirmed": settled,
	})
}

// PaymentWebhook authenticates the provider callback with an HMAC signature
// and a replay window, then applies it idempotently. A replayed delivery for a
// finalized payment answers success without touching anything.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if err := payrail.VerifySignature(
		h.WebhookSecret,
		r.Header.Get("X-Webhook-Timestamp"),
		body,
		r.Header.Get("X-Webhook-Signature"),
		time.Now().UTC(),
	); err != nil {
		writeDomainError(w, err)
		return
	}

	var ev payrail.WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ExternalPaymentID == "" {
		writeError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	payment, applied, err := h.Payments.HandleWebhook(r.Context(), ev)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if applied {
		metrics.PaymentsSettledTotal.WithLabelValues(string(payment.Status)).Inc()
	} else {
		metrics.WebhookReplaysTotal.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payment_id": payment.ID,
		"status":     string(payment.Status),
		"applied":    applied,
	})
}
