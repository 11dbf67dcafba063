package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/casefile/casefile/internal/auth"
	"github.com/casefile/casefile/internal/handler/dto"
	"github.com/casefile/casefile/internal/service"
)

// multipartMemoryLimit is how much of a parsed form ParseMultipartForm keeps
// in memory before spilling to disk.
const multipartMemoryLimit = 32 << 20

// Upload stores a file under one of the caller's people.
// POST /home/person/{id}/upload
func (h *RecordsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	personID, ok := urlID(r, "id")
	if !ok {
		NotFound(w, r)
		return
	}

	// Cut oversized bodies off at the transport before buffering them.
	// The slack covers multipart framing around a payload at the limit.
	r.Body = http.MaxBytesReader(w, r.Body, h.records.MaxUploadBytes()+multipartMemoryLimit)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		h.uploadParseError(w, err)
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required", "MISSING_FILE")
		return
	}
	defer part.Close()

	payload, err := io.ReadAll(part)
	if err != nil {
		h.uploadParseError(w, err)
		return
	}

	file, err := h.records.UploadFile(r.Context(), principal.UserID, personID, service.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Description: r.FormValue("description"),
		Payload:     payload,
	})
	if err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, file)
}

// uploadParseError distinguishes a body that blew the size cap from one
// that is simply not valid multipart.
func (h *RecordsHandler) uploadParseError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusBadRequest, service.ErrFileTooLarge.Error(), "FILE_TOO_LARGE")
		return
	}
	writeError(w, http.StatusBadRequest, "invalid multipart body", "INVALID_BODY")
}

// ListFiles lists file metadata for one of the caller's people. Payloads
// are omitted. GET /home/person/{id}/files
func (h *RecordsHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	personID, ok := urlID(r, "id")
	if !ok {
		NotFound(w, r)
		return
	}

	files, err := h.records.ListFiles(r.Context(), principal.UserID, personID)
	if err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FileListResponse{Files: files})
}

// Download streams one file's payload back to its owner.
// GET /home/person/{id}/files/{file_id}
func (h *RecordsHandler) Download(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	personID, ok := urlID(r, "id")
	if !ok {
		NotFound(w, r)
		return
	}
	fileID, ok := urlID(r, "file_id")
	if !ok {
		NotFound(w, r)
		return
	}

	file, err := h.records.GetFile(r.Context(), principal.UserID, personID, fileID)
	if err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", file.Size))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Payload); err != nil {
		_ = err
	}
}

// DeleteFile removes a single file. DELETE /home/person/{id}/files/{file_id}
func (h *RecordsHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	personID, ok := urlID(r, "id")
	if !ok {
		NotFound(w, r)
		return
	}
	fileID, ok := urlID(r, "file_id")
	if !ok {
		NotFound(w, r)
		return
	}

	if err := h.records.DeleteFile(r.Context(), principal.UserID, personID, fileID); err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
