package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/model"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/service"
)

// KeyHandler serves the public key lifecycle endpoints: issuing new keys and
// validating presented ones.
type KeyHandler struct {
	keys   *service.KeyService
	logger *slog.Logger
}

// NewKeyHandler creates a KeyHandler.
func NewKeyHandler(keys *service.KeyService, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{keys: keys, logger: logger}
}

// Create issues a fresh API key and returns the plaintext secret. The secret
// is the credential itself; this response is the only place it ever appears.
// POST /create
func (h *KeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	secret, err := h.keys.Generate(r.Context())
	if err != nil {
		h.logger.Error("key generation failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to generate API key.")
		return
	}

	writeJSON(w, http.StatusOK, model.Response{
		Success: true,
		APIKey:  secret,
		Message: "API key generated and saved.",
	})
}

// checkRequest is the expected payload for the Check endpoint.
type checkRequest struct {
	APIKey string `json:"apiKey"`
}

// Check validates a presented API key. A valid key gets one usage event
// appended as a side effect; an unknown key is rejected with 401 and leaves
// no trace.
// POST /cekapi
func (h *KeyHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.APIKey == "" {
		writeFailure(w, http.StatusBadRequest, "API key missing from request body.")
		return
	}

	if _, err := h.keys.Validate(r.Context(), req.APIKey); err != nil {
		if errors.Is(err, service.ErrInvalidKey) {
			writeFailure(w, http.StatusUnauthorized, "API key is not valid.")
			return
		}
		h.logger.Error("key validation failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to check API key.")
		return
	}

	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "API key is valid."})
}
