package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/resilience"
)

// readJSON decodes exactly one JSON value of at most limit bytes. On failure
// it has already answered 400 or 413.
func readJSON[T any](w http.ResponseWriter, r *http.Request, limit int64) (T, bool) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	err := dec.Decode(&v)
	if err == nil && dec.More() {
		err = errors.New("trailing data")
	}
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return v, true
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusBadRequest, "request body is required")
	default:
		writeError(w, http.StatusBadRequest, "invalid request body")
	}
	return v, false
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write json response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorStatuses maps domain sentinels to a status and a fixed client message.
// An empty message means the caller supplies one.
var errorStatuses = []struct {
	target error
	status int
	msg    string
}{
	{domain.ErrNotFound, http.StatusNotFound, ""},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "authentication required"},
	{domain.ErrForbidden, http.StatusForbidden, "insufficient permissions"},
	{domain.ErrConflict, http.StatusConflict, "another change to this item is still pending"},
	{resilience.ErrCircuitOpen, http.StatusServiceUnavailable, "storage temporarily unavailable"},
}

// writeDomainError answers err with its mapped status. Validation errors
// carry their own message; unrecognized errors are logged and become 500.
func writeDomainError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, domain.ErrValidation) {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	for _, m := range errorStatuses {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.msg
		if msg == "" {
			msg = notFoundMsg
		}
		if m.status == http.StatusServiceUnavailable {
			slog.Warn("store unavailable", "error", err)
		}
		writeError(w, m.status, msg)
		return
	}
	writeInternalError(w, err)
}

// validationMessage strips wrapping context and the "validation: " prefix.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// writeInternalError logs err and hides it from the client.
func writeInternalError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
