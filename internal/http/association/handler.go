package association

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/association"
	"github.com/MrJamesThe3rd/pairup/internal/matcher"
)

type Handler struct {
	svc *association.Service
}

func NewHandler(svc *association.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/suggest", h.suggest)
}

type associationResponse struct {
	ID        uuid.UUID    `json:"id"`
	SessionID uuid.UUID    `json:"session_id"`
	LeftKey   string       `json:"left_key"`
	RightKey  string       `json:"right_key"`
	RightPath string       `json:"right_path,omitempty"`
	Kind      matcher.Kind `json:"kind"`
	Score     int          `json:"score"`
	CreatedAt time.Time    `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.URL.Query().Get("session_id"))
	if err != nil {
		http.Error(w, "session_id query parameter is required", http.StatusBadRequest)
		return
	}

	as, err := h.svc.List(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]associationResponse, 0, len(as))
	for _, a := range as {
		resp = append(resp, associationResponse{
			ID:        a.ID,
			SessionID: a.SessionID,
			LeftKey:   a.LeftKey,
			RightKey:  a.RightKey,
			RightPath: a.RightPath,
			Kind:      a.Kind,
			Score:     a.Score,
			CreatedAt: a.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type suggestResponse struct {
	LeftKey  string `json:"left_key"`
	RightKey string `json:"right_key"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	leftKey := r.URL.Query().Get("left_key")
	if leftKey == "" {
		http.Error(w, "left_key query parameter is required", http.StatusBadRequest)
		return
	}

	rightKey, err := h.svc.Suggest(r.Context(), leftKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(suggestResponse{
		LeftKey:  leftKey,
		RightKey: rightKey,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
