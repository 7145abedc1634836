// Package api exposes the filedepot stores over HTTP.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/filedepot/filedepot/pkg/filedepot"
)

// maxUploadMemory bounds the multipart parse buffer; larger parts spill to
// temp files.
const maxUploadMemory = 32 << 20

// Handler routes category file operations to the matching store.
type Handler struct {
	stores map[filedepot.Category]*filedepot.Store
}

// NewHandler creates a handler over the given per-category stores.
func NewHandler(stores map[filedepot.Category]*filedepot.Store) *Handler {
	return &Handler{stores: stores}
}

// Routes returns the router for the file endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{category}", func(r chi.Router) {
		r.Get("/fetch", h.ListRecords)
		r.Get("/fetch/{id}", h.FetchBlob)
		r.Post("/create", h.CreateBlob)
		r.Patch("/edit/{id}", h.EditBlob)
		r.Delete("/delete/{id}", h.DeleteBlob)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return r
}

// ErrorResponse is the body rendered for every failure.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// MutationResponse is the body rendered for successful create/edit calls.
type MutationResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// DeleteResponse is the body rendered for successful deletes.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Status: status, Message: message})
}

// renderStoreError maps store failures onto status codes. Internal errors
// degrade to a fixed message so storage details never leak to callers.
func renderStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, filedepot.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "record not found")
	case errors.Is(err, filedepot.ErrConflict):
		writeError(w, r, http.StatusConflict, "filename already in use")
	case errors.Is(err, filedepot.ErrBadRequest):
		writeError(w, r, http.StatusBadRequest, "missing file upload")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// storeFor resolves the category path segment to its store.
func (h *Handler) storeFor(w http.ResponseWriter, r *http.Request) *filedepot.Store {
	category := filedepot.Category(chi.URLParam(r, "category"))
	store, ok := h.stores[category]
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return nil
	}
	return store
}

func recordID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "record not found")
		return uuid.Nil, false
	}
	return id, true
}

// ListRecords returns every record in the category.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	store := h.storeFor(w, r)
	if store == nil {
		return
	}

	records := store.List(r.Context())
	render.JSON(w, r, records)
}

// FetchBlob streams the raw blob bytes for a record.
func (h *Handler) FetchBlob(w http.ResponseWriter, r *http.Request) {
	store := h.storeFor(w, r)
	if store == nil {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	_, rc, err := store.Fetch(r.Context(), id)
	if err != nil {
		slog.Error("fetch failed", "category", store.Category(), "id", id, "error", err)
		renderStoreError(w, r, err)
		return
	}
	defer rc.Close()

	// Content-Length is left to net/http: the indexed size could lag the
	// backend if the blob changed underneath us, and a mismatched header
	// truncates or stalls the response.
	w.Header().Set("Content-Type", store.Category().ContentType())
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("streaming blob failed", "category", store.Category(), "id", id, "error", err)
	}
}

// CreateBlob stores a new upload under its original filename.
func (h *Handler) CreateBlob(w http.ResponseWriter, r *http.Request) {
	store := h.storeFor(w, r)
	if store == nil {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, http.StatusBadRequest, "missing file upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	fileName := filepath.Base(header.Filename)
	rec, err := store.Create(r.Context(), fileName, file)
	if err != nil {
		slog.Error("create failed", "category", store.Category(), "file_name", fileName, "error", err)
		renderStoreError(w, r, err)
		return
	}

	slog.Info("record created", "category", store.Category(), "id", rec.ID, "file_name", rec.FileName)
	render.JSON(w, r, MutationResponse{Success: true, ID: rec.ID.String()})
}

// EditBlob replaces a record's bytes and/or renames it. The uploaded file
// part and the filename field are both optional; an edit supplying neither
// still refreshes the modification time.
func (h *Handler) EditBlob(w http.ResponseWriter, r *http.Request) {
	store := h.storeFor(w, r)
	if store == nil {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var req filedepot.UpdateRequest

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		req.Data = file
		uploadName := filepath.Base(header.Filename)
		if uploadName != "" && uploadName != "." {
			req.FileName = &uploadName
		}
	case errors.Is(err, http.ErrMissingFile):
		// metadata-only edit
	default:
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	if name := r.FormValue("filename"); name != "" {
		cleaned := filepath.Base(name)
		req.FileName = &cleaned
	}

	rec, err := store.Edit(r.Context(), id, req)
	if err != nil {
		slog.Error("edit failed", "category", store.Category(), "id", id, "error", err)
		renderStoreError(w, r, err)
		return
	}

	slog.Info("record updated", "category", store.Category(), "id", rec.ID, "file_name", rec.FileName)
	render.JSON(w, r, MutationResponse{Success: true, ID: rec.ID.String()})
}

// DeleteBlob removes a record and its blob.
func (h *Handler) DeleteBlob(w http.ResponseWriter, r *http.Request) {
	store := h.storeFor(w, r)
	if store == nil {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	rec, err := store.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete failed", "category", store.Category(), "id", id, "error", err)
		renderStoreError(w, r, err)
		return
	}

	slog.Info("record deleted", "category", store.Category(), "id", rec.ID, "file_name", rec.FileName)
	render.JSON(w, r, DeleteResponse{Success: true, Message: rec.FileName + " deleted"})
}
