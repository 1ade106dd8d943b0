package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"timelock.keep/internal/logger"
	"timelock.keep/internal/store"
	"timelock.keep/internal/timelock"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	vault *timelock.Service
}

func NewHandler(vault *timelock.Service) *Handler {
	return &Handler{vault: vault}
}

type CreateRequest struct {
	Value       string `json:"value"`
	HoldDays    int    `json:"hold_days"`
	Description string `json:"description,omitempty"`
}

// RecordResponse is the wire shape for both listing entries and detail
// reads. Value is present only on the one detail read that discloses it.
type RecordResponse struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	ExpiresAt   time.Time          `json:"expires_at"`
	IsExpired   bool               `json:"is_expired"`
	Remaining   timelock.Remaining `json:"remaining_time"`
	Value       string             `json:"value,omitempty"`
}

type DeleteResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateSecret(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.vault.Create(r.Context(), timelock.CreateInput{
		Value:       req.Value,
		HoldDays:    req.HoldDays,
		Description: req.Description,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.json(w, http.StatusCreated, toResponse(*view))
}

func (h *Handler) ListSecrets(w http.ResponseWriter, r *http.Request) {
	views, err := h.vault.ListActive(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := make([]RecordResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toResponse(v))
	}
	h.json(w, http.StatusOK, out)
}

func (h *Handler) GetSecret(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.vault.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := toResponse(detail.RecordView)
	if detail.Disclosed {
		resp.Value = detail.Value
	}
	h.json(w, http.StatusOK, resp)
}

func (h *Handler) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.vault.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.json(w, http.StatusOK, DeleteResponse{Message: "secret deleted successfully"})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, timelock.ErrHoldOutOfRange):
		h.error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		// Retired-by-expiry and never-existed are indistinguishable here.
		h.error(w, http.StatusNotFound, "secret not found or expired")
	case errors.Is(err, store.ErrConflict):
		h.error(w, http.StatusConflict, "secret id already exists")
	default:
		logger.FromRequest(r).Err(err).Msg("request failed")
		h.error(w, http.StatusInternalServerError, "internal error")
	}
}

func toResponse(v timelock.RecordView) RecordResponse {
	return RecordResponse{
		ID:          v.ID,
		Description: v.Description,
		CreatedAt:   v.CreatedAt,
		ExpiresAt:   v.ExpiresAt,
		IsExpired:   v.IsExpired,
		Remaining:   v.Remaining,
	}
}

func (h *Handler) json(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) error(w http.ResponseWriter, status int, message string) {
	h.json(w, status, ErrorResponse{Error: message})
}
