package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rupayana/backend/internal/http/respond"
	"github.com/rupayana/backend/internal/models/dto"
	"github.com/rupayana/backend/internal/reset"
)

// ResetHandler owns the password-reset endpoints.
type ResetHandler struct {
	manager *reset.Manager
}

// NewResetHandler constructs the handler.
func NewResetHandler(m *reset.Manager) *ResetHandler {
	return &ResetHandler{manager: m}
}

// Register attaches reset routes to the mux.
func (h *ResetHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/request-reset", h.handleRequestReset)
	mux.HandleFunc("/api/reset-password", h.handleResetPassword)
}

func (h *ResetHandler) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RequestResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respond.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	token, err := h.manager.Issue(r.Context(), req.Email)
	if err != nil {
		writeDomainError(w, "request reset", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Reset token issued", dto.RequestResetResponse{Token: token})
}

func (h *ResetHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		respond.Error(w, http.StatusBadRequest, "password is required")
		return
	}
	if err := h.manager.Consume(r.Context(), req.Email, req.Token, req.Password); err != nil {
		writeDomainError(w, "reset password", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Password reset", map[string]bool{"success": true})
}
