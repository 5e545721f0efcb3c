package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/model"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/store"
)

// UserHandler saves end-user profiles. A profile must present a valid API key
// to be stored; the key lookup binds the profile to that key's id.
type UserHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(st *store.Store, logger *slog.Logger) *UserHandler {
	return &UserHandler{store: st, logger: logger}
}

// saveUserRequest is the expected payload for Save.
type saveUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	APIKey    string `json:"apiKey"`
}

// Save stores a user profile bound to the presented API key.
// POST /user/save
func (h *UserHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveUserRequest
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.APIKey == "" {
		writeFailure(w, http.StatusBadRequest, "Generate an API key first.")
		return
	}

	key, err := h.store.GetAPIKeyBySecret(r.Context(), req.APIKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusBadRequest, "API key not found.")
			return
		}
		h.logger.Error("api key lookup failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to save user.")
		return
	}

	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		APIKeyID:  key.ID,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		h.logger.Error("user save failed", "email", req.Email, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to save user.")
		return
	}

	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "User saved."})
}
