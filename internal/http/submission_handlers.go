package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskmarket/internal/metrics"
	"taskmarket/internal/services"
)

type submitRequest struct {
	SubmissionData json.RawMessage `json:"submission_data"`
}

func (h *Handler) SubmitToTask(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sub, err := h.Submissions.Submit(r.Context(), currentUser(r), chi.URLParam(r, "taskId"), req.SubmissionData)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		writeDomainError(w, err)
		return
	}
	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	writeJSON(w, http.StatusCreated, viewSubmission(sub))
}

func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Submissions.Get(r.Context(), currentUser(r), chi.URLParam(r, "submissionId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSubmission(sub))
}

func (h *Handler) ListMySubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Submissions.ListMine(r.Context(), currentUser(r), atoiDefault(r.URL.Query().Get("limit"), 50))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSubmissions(subs))
}

func (h *Handler) ClaimSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Submissions.Claim(r.Context(), currentUser(r), chi.URLParam(r, "submissionId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSubmission(sub))
}

func (h *Handler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	var in services.ReviewInput
	if !decodeBody(w, r, &in) {
		return
	}

	sub, payment, err := h.Submissions.Review(r.Context(), currentUser(r), chi.URLParam(r, "submissionId"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.ReviewsTotal.WithLabelValues(string(sub.Status)).Inc()

	resp := map[string]any{"submission": viewSubmission(sub)}
	if payment != nil {
		resp["payment"] = viewPayment(payment)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.Disputes.Open(r.Context(), currentUser(r), chi.URLParam(r, "submissionId"), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewDispute(d))
}

func (h *Handler) GetDispute(w http.ResponseWriter, r *http.Request) {
	d, err := h.Disputes.Get(r.Context(), currentUser(r), chi.URLParam(r, "disputeId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDispute(d))
}

func (h *Handler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Verdict    string `json:"verdict"`
		Resolution string `json:"resolution"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.Disputes.Resolve(r.Context(), currentUser(r), chi.URLParam(r, "disputeId"), req.Verdict, req.Resolution)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDispute(d))
}
