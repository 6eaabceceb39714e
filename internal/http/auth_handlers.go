package http

import (
	"net/http"

	"taskmarket/internal/services"
)

// VerifyIdentity is the World ID login: forward the proof, get a session.
func (h *Handler) VerifyIdentity(w http.ResponseWriter, r *http.Request) {
	var in services.VerifyInput
	if !decodeBody(w, r, &in) {
		return
	}

	user, token, err := h.Users.VerifyAndLogin(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  viewUser(user),
		"token": token,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewUser(currentUser(r)))
}
