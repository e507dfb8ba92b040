package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/association"
	"github.com/MrJamesThe3rd/pairup/internal/config"
	"github.com/MrJamesThe3rd/pairup/internal/matcher"
	"github.com/MrJamesThe3rd/pairup/internal/media"
	"github.com/MrJamesThe3rd/pairup/internal/roster"
	"github.com/MrJamesThe3rd/pairup/internal/session"
)

type Handler struct {
	sessions         *session.Registry
	associations     *association.Service
	defaultThreshold int
}

func NewHandler(sessions *session.Registry, associations *association.Service, defaultThreshold int) *Handler {
	return &Handler{
		sessions:         sessions,
		associations:     associations,
		defaultThreshold: defaultThreshold,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/import", h.importRoster)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/automatch", h.autoMatch)
	r.Post("/{id}/match", h.match)
	r.Post("/{id}/unmatch", h.unmatch)
	r.Post("/{id}/commit", h.commit)
}

type createSessionRequest struct {
	Recipients []roster.Recipient `json:"recipients"`
	Files      []string           `json:"files"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.start(w, req.Recipients, media.FromPaths(req.Files))
}

// importRoster creates a session from an uploaded roster CSV ("roster") and
// a newline separated list of recording paths ("files").
func (h *Handler) importRoster(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("roster")
	if err != nil {
		http.Error(w, "roster file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	recipients, err := roster.Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var paths []string

	for _, line := range strings.Split(r.FormValue("files"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}

	h.start(w, recipients, media.FromPaths(paths))
}

func (h *Handler) start(w http.ResponseWriter, recipients []roster.Recipient, files []media.File) {
	s, err := h.sessions.Create(recipients, files)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(s, s.Rows()))
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	s, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	return s, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	rows := s.Rows()
	if q := r.URL.Query().Get("q"); q != "" {
		rows = s.Filter(q)
	}

	writeJSON(w, http.StatusOK, toSessionResponse(s, rows))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.sessions.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type autoMatchRequest struct {
	Threshold *int `json:"threshold,omitempty"`
}

func (h *Handler) autoMatch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req autoMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	threshold := h.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	if threshold < config.MinThreshold {
		http.Error(w, fmt.Sprintf("threshold must be between %d and 100", config.MinThreshold), http.StatusBadRequest)
		return
	}

	stats, err := s.AutoMatch(r.Context(), threshold)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}

type matchRequest struct {
	LeftID  uuid.UUID `json:"left_id"`
	RightID uuid.UUID `json:"right_id"`
}

func (h *Handler) match(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	row, err := s.ForceMatch(req.LeftID, req.RightID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, row)
}

type unmatchRequest struct {
	ItemID uuid.UUID `json:"item_id"`
}

func (h *Handler) unmatch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req unmatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	left, right, err := s.UnMatch(req.ItemID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, unmatchResponse{Left: left, Right: right})
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	as, err := h.associations.Commit(r.Context(), s.ID, s.Associations())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]associationResponse, 0, len(as))
	for _, a := range as {
		resp = append(resp, associationResponse{
			ID:        a.ID,
			LeftKey:   a.LeftKey,
			RightKey:  a.RightKey,
			RightPath: a.RightPath,
			Kind:      a.Kind,
			Score:     a.Score,
			CreatedAt: a.CreatedAt,
		})
	}

	writeJSON(w, http.StatusCreated, resp)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrItemNotFound), errors.Is(err, matcher.ErrNotInPool):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, matcher.ErrAlreadyMatched), errors.Is(err, matcher.ErrNotMatched), errors.Is(err, matcher.ErrSameSide):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, matcher.ErrDuplicateKey), errors.Is(err, matcher.ErrInvalidThreshold):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
