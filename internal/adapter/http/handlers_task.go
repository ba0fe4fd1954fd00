package http

import (
	"net/http"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
)

type editTextRequest struct {
	Text string `json:"text"`
}

// ListTasks handles GET /api/v1/tasks?filter=&sort=
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := h.Tasks.List(r.Context(), q.Get("filter"), q.Get("sort"))
	if err != nil {
		writeDomainError(w, err, "tasks not found")
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// TaskSummary handles GET /api/v1/tasks/summary
func (h *Handlers) TaskSummary(w http.ResponseWriter, r *http.Request) {
	digest, err := h.Tasks.Summary(r.Context())
	if err != nil {
		writeDomainError(w, err, "tasks not found")
		return
	}
	writeJSON(w, http.StatusOK, digest)
}

// EditTaskText handles PUT /api/v1/tasks/{id}/text
func (h *Handlers) EditTaskText(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[editTextRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	t, err := h.Tasks.EditText(r.Context(), urlParam(r, "id"), req.Text)
	if err != nil {
		writeDomainError(w, err, taskNoun.missing())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) getTask() http.HandlerFunc {
	return handleGet(taskNoun, h.Tasks.Get)
}

func (h *Handlers) createTask() http.HandlerFunc {
	return handleCreate(taskNoun, maxRequestBodySize, h.Tasks.Add)
}

func (h *Handlers) updateTask() http.HandlerFunc {
	return handleUpdate(taskNoun, maxRequestBodySize, h.Tasks.Update)
}

func (h *Handlers) toggleTask() http.HandlerFunc {
	return handleAction(taskNoun, h.Tasks.Toggle)
}

func (h *Handlers) deleteTask() http.HandlerFunc {
	return handleDelete(taskNoun, h.Tasks.Delete)
}
