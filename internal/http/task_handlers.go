package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskmarket/internal/models"
	"taskmarket/internal/services"
	"taskmarket/internal/store"
)

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in services.CreateTaskInput
	if !decodeBody(w, r, &in) {
		return
	}
	task, err := h.Tasks.Create(r.Context(), currentUser(r), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewTask(task))
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := models.TaskStatus(q.Get("status"))
	if status == "" {
		status = models.TaskActive
	}
	tasks, err := h.Tasks.List(r.Context(), store.TaskFilter{
		Status:     status,
		CategoryID: q.Get("category_id"),
		TaskType:   q.Get("task_type"),
		Limit:      atoiDefault(q.Get("limit"), 50),
		Offset:     atoiDefault(q.Get("offset"), 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTasks(tasks))
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.Tasks.Get(r.Context(), chi.URLParam(r, "taskId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTask(task))
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateTaskInput
	if !decodeBody(w, r, &in) {
		return
	}
	task, err := h.Tasks.Update(r.Context(), currentUser(r), chi.URLParam(r, "taskId"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTask(task))
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.Delete(r.Context(), currentUser(r), chi.URLParam(r, "taskId")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Tasks.Categories(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewCategories(cats))
}

func (h *Handler) TaskConsensus(w http.ResponseWriter, r *http.Request) {
	report, err := h.Consensus.Tally(r.Context(), chi.URLParam(r, "taskId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
		if n > 1_000_000 {
			return def
		}
	}
	return n
}
