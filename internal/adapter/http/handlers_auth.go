package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
)

// Signup handles POST /api/v1/auth/signup
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.CreateRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	resp, err := h.Auth.Signup(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			writeError(w, http.StatusForbidden, "signup is disabled")
			return
		}
		if errors.Is(err, domain.ErrConflict) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeDomainError(w, err, "signup failed")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.LoginRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	resp, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			slog.Debug("login failed", "email", req.Email)
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeDomainError(w, err, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/v1/auth/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Auth.Me(r.Context())
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
