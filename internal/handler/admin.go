package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/metrics"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/model"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/service"
)

// AdminHandler serves admin account registration, login, and the liveness
// dashboard. Login verifies credentials and nothing more; no session or token
// is issued.
type AdminHandler struct {
	auth     *service.AuthService
	liveness *service.LivenessService
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(auth *service.AuthService, liveness *service.LivenessService, m *metrics.Metrics, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, liveness: liveness, metrics: m, logger: logger}
}

// credentialsRequest is the shared payload for Register and Login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new admin account with a bcrypt-hashed password.
// POST /admin/register
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Email, req.Password); err != nil {
		// Duplicate email surfaces as a plain registration failure, matching
		// the single failure path the endpoint has always had.
		h.logger.Error("admin registration failed", "email", req.Email, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to register admin.")
		return
	}

	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "Admin registered."})
}

// Login verifies admin credentials. Unknown email and wrong password produce
// the same response, so the endpoint cannot be used to enumerate accounts.
// POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	if err := h.auth.Login(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.metrics.AdminLoginsTotal.WithLabelValues("failure").Inc()
			writeFailure(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		h.logger.Error("admin login failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Login error.")
		return
	}

	h.metrics.AdminLoginsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "Login successful."})
}

// Dashboard reports every saved user with their key and its derived
// online/offline status over the trailing 30-day window.
// GET /admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.liveness.Dashboard(r.Context(), time.Time{})
	if err != nil {
		h.logger.Error("dashboard query failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to load dashboard.")
		return
	}

	writeJSON(w, http.StatusOK, model.DashboardResponse{Success: true, Data: rows})
}
