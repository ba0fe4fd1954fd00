package http

import (
	"net/http"
	"strconv"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/view"
)

// ListClients handles GET /api/v1/clients?status=&assigned_to=&sort=&desc=
func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := view.ClientQuery{
		Status:     client.Status(q.Get("status")),
		AssignedTo: q.Get("assigned_to"),
		Sort:       view.ClientSort(q.Get("sort")),
	}
	if raw := q.Get("desc"); raw != "" {
		desc, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "desc must be a boolean")
			return
		}
		query.Desc = desc
	}

	clients, err := h.Clients.List(r.Context(), query)
	if err != nil {
		writeDomainError(w, err, "clients not found")
		return
	}
	if clients == nil {
		clients = []client.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// ClientStats handles GET /api/v1/clients/stats
func (h *Handlers) ClientStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Clients.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err, "clients not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) getClient() http.HandlerFunc {
	return handleGet(clientNoun, h.Clients.Get)
}

func (h *Handlers) createClient() http.HandlerFunc {
	return handleCreate(clientNoun, maxRequestBodySize, h.Clients.Create)
}

func (h *Handlers) updateClient() http.HandlerFunc {
	return handleUpdate(clientNoun, maxRequestBodySize, h.Clients.Update)
}

func (h *Handlers) updateClientStatus() http.HandlerFunc {
	return handleUpdate(clientNoun, maxRequestBodySize, h.Clients.UpdateStatus)
}

func (h *Handlers) deleteClient() http.HandlerFunc {
	return handleDelete(clientNoun, h.Clients.Delete)
}
