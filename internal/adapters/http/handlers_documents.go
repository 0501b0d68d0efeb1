package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	user := userFromContext(r.Context())
	filter := domain.DocumentFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
	}

	docs, err := rt.docs.List(r.Context(), user.ID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	user := userFromContext(r.Context())
	doc, err := rt.ingestor.Upload(
		r.Context(),
		user.ID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, fileHeader.Size, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	if id, found := strings.CutSuffix(rest, "/download"); found {
		rt.downloadDocument(w, r, id)
		return
	}
	if id, tail, found := strings.Cut(rest, "/collaborators"); found {
		rt.collaborators(w, r, id, tail)
		return
	}
	if strings.Contains(rest, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt.getDocument(w, r, rest)
	case http.MethodPatch, http.MethodPut:
		rt.updateDocument(w, r, rest)
	case http.MethodDelete:
		rt.deleteDocument(w, r, rest)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) updateDocument(w http.ResponseWriter, r *http.Request, id string) {
	var update domain.DocumentUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user := userFromContext(r.Context())
	doc, err := rt.docs.Update(r.Context(), user.ID, id, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// collaborators dispatches sharing changes: POST .../collaborators grants,
// DELETE .../collaborators/{user_id} revokes.
func (rt *Router) collaborators(w http.ResponseWriter, r *http.Request, id, tail string) {
	user := userFromContext(r.Context())

	switch {
	case tail == "" && r.Method == http.MethodPost:
		var grant struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&grant); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if err := rt.docs.AddCollaborator(r.Context(), user.ID, id, grant.UserID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case strings.HasPrefix(tail, "/") && r.Method == http.MethodDelete:
		collaboratorID := strings.TrimPrefix(tail, "/")
		if collaboratorID == "" || strings.Contains(collaboratorID, "/") {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		if err := rt.docs.RemoveCollaborator(r.Context(), user.ID, id, collaboratorID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case tail != "" && !strings.HasPrefix(tail, "/"):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	user := userFromContext(r.Context())
	doc, err := rt.docs.GetByID(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request, id string) {
	user := userFromContext(r.Context())
	if err := rt.docs.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) downloadDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	user := userFromContext(r.Context())
	doc, content, err := rt.docs.OpenContent(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer content.Close()

	mimeType := doc.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	if doc.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", doc.Size))
	}
	if _, err := io.Copy(w, content); err != nil {
		slog.Warn("document_stream_interrupted",
			"request_id", requestIDFromContext(r.Context()),
			"document_id", id,
			"error", err,
		)
	}
}
