package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/export"
	"github.com/MrJamesThe3rd/pairup/internal/matcher"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	SessionID uuid.UUID `json:"session_id"`
}

type itemResponse struct {
	LeftKey  string       `json:"left_key"`
	RightKey string       `json:"right_key"`
	Kind     matcher.Kind `json:"kind"`
	Score    int          `json:"score"`
	File     string       `json:"file,omitempty"`
}

type exportMetadataResponse struct {
	Items   []itemResponse `json:"items"`
	Summary string         `json:"summary"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return uuid.Nil, false
	}

	if req.SessionID == uuid.Nil {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return req.SessionID, true
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.decode(w, r)
	if !ok {
		return
	}

	tmpDir, err := os.MkdirTemp("", "pairup-export-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), sessionID, tmpDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]itemResponse, 0, len(items))
	for _, item := range items {
		ir := itemResponse{
			LeftKey:  item.Association.LeftKey,
			RightKey: item.Association.RightKey,
			Kind:     item.Association.Kind,
			Score:    item.Association.Score,
		}

		if item.FilePath != "" {
			ir.File = filepath.Base(item.FilePath)
		}

		resp = append(resp, ir)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(exportMetadataResponse{
		Items:   resp,
		Summary: h.svc.GenerateSummary(items),
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.decode(w, r)
	if !ok {
		return
	}

	tmpDir, err := os.MkdirTemp("", "pairup-export-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), sessionID, tmpDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summary := h.svc.GenerateSummary(items)
	if err := os.WriteFile(filepath.Join(tmpDir, "summary.txt"), []byte(summary), 0o644); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"associations_%s.zip\"", sessionID))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	err = filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		relPath, _ := filepath.Rel(tmpDir, path)

		zf, err := zipWriter.Create(relPath)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
