package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"taskmarket/internal/auth"
	"taskmarket/internal/identity"
	"taskmarket/internal/models"
	"taskmarket/internal/money"
	"taskmarket/internal/payrail"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// writeDomainError maps domain errors to status codes in one place; routes
// never re-derive codes themselves.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, money.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, identity.ErrProofRejected),
		errors.Is(err, payrail.ErrBadSignature),
		errors.Is(err, payrail.ErrStaleTimestamp):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrNotPermitted),
		errors.Is(err, models.ErrOwnTask),
		errors.Is(err, models.ErrUserInactive):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrTaskNotFound),
		errors.Is(err, models.ErrSubmissionNotFound),
		errors.Is(err, models.ErrPaymentNotFound),
		errors.Is(err, models.ErrDisputeNotFound),
		errors.Is(err, models.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrDuplicateSubmission),
		errors.Is(err, models.ErrAlreadyReviewed),
		errors.Is(err, models.ErrPaymentFinalized),
		errors.Is(err, models.ErrBadStatusChange),
		errors.Is(err, models.ErrTaskNotActive),
		errors.Is(err, models.ErrTaskHasSubmissions),
		errors.Is(err, models.ErrDisputeExists),
		errors.Is(err, models.ErrDisputeClosed),
		errors.Is(err, models.ErrNotDisputable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrTaskExpired),
		errors.Is(err, models.ErrTaskFull):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, models.ErrDailyLimitReached):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}
