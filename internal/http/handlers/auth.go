package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rupayana/backend/internal/accounts"
	"github.com/rupayana/backend/internal/auth"
	"github.com/rupayana/backend/internal/http/respond"
	"github.com/rupayana/backend/internal/models/dto"
)

// AuthHandler owns the register/login/logout/profile endpoints.
type AuthHandler struct {
	svc    *accounts.Service
	tokens *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *accounts.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/register", h.handleRegister)
	mux.HandleFunc("/api/login", h.handleLogin)
	mux.HandleFunc("/api/logout", h.handleLogout)
	mux.HandleFunc("/api/profile", h.handleProfile)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	user, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		writeDomainError(w, "register", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Registered", user)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, "login", err)
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		writeDomainError(w, "login: generate token", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Logged in", dto.LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.svc.Logout()
	respond.JSON(w, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	user, err := h.svc.UpdateProfile(r.Context(), req.Email, req.Name, req.Phone)
	if err != nil {
		writeDomainError(w, "update profile", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Profile updated", user)
}
