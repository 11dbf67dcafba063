package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/casefile/casefile/internal/auth"
	"github.com/casefile/casefile/internal/handler/dto"
	"github.com/casefile/casefile/internal/service"
)

// RecordsHandler serves the category/person/file tree under /home. Every
// route runs behind the auth middleware, so the principal is always present.
type RecordsHandler struct {
	records *service.RecordsService
	logger  *slog.Logger
}

func NewRecordsHandler(records *service.RecordsService, logger *slog.Logger) *RecordsHandler {
	return &RecordsHandler{records: records, logger: logger}
}

// CreateCategory creates a category for the caller. POST /home/category
func (h *RecordsHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	var req dto.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	category, err := h.records.CreateCategory(r.Context(), principal.UserID, req.Name)
	if err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// ListCategories lists the caller's categories. GET /home/categories
func (h *RecordsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	categories, err := h.records.ListCategories(r.Context(), principal.UserID)
	if err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoryListResponse{Categories: categories})
}

// DeleteCategory removes a category and everything under it.
// DELETE /home/category/{id}
func (h *RecordsHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	categoryID, ok := urlID(r, "id")
	if !ok {
		NotFound(w, r)
		return
	}

	if err := h.records.DeleteCategory(r.Context(), principal.UserID, categoryID); err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreatePerson creates a person under one of the caller's categories.
// POST /home/person
func (h *RecordsHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	var req dto.CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	person, err := h.records.CreatePerson(r.Context(), principal.UserID, req.CategoryID, req.Name)
	if err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, person)
}

// ListPeople lists the people in one of the caller's categories.
// GET /home/category/{id}/people
func (h *RecordsHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	categoryID, ok := urlID(r, "id")
	if !ok {
		NotFound(w, r)
		return
	}

	people, err := h.records.ListPeople(r.Context(), principal.UserID, categoryID)
	if err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PersonListResponse{People: people})
}

// DeletePerson removes a person and their files. DELETE /home/person/{id}
func (h *RecordsHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	personID, ok := urlID(r, "id")
	if !ok {
		NotFound(w, r)
		return
	}

	if err := h.records.DeletePerson(r.Context(), principal.UserID, personID); err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Structure dumps the caller's whole tree with counts. GET /home/user/structure
func (h *RecordsHandler) Structure(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())

	structure, err := h.records.Structure(r.Context(), principal.UserID)
	if err != nil {
		h.handleRecordsError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStructureResponse(structure))
}

func (h *RecordsHandler) handleRecordsError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found", "NOT_FOUND")
	case errors.Is(err, service.ErrCategoryExists):
		writeError(w, http.StatusBadRequest, err.Error(), "CATEGORY_EXISTS")
	case errors.Is(err, service.ErrEmptyName), errors.Is(err, service.ErrNameTooLong):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_NAME")
	case errors.Is(err, service.ErrFileTooLarge):
		writeError(w, http.StatusBadRequest, err.Error(), "FILE_TOO_LARGE")
	case errors.Is(err, service.ErrFileTypeNotAllowed):
		writeError(w, http.StatusBadRequest, err.Error(), "FILE_TYPE_NOT_ALLOWED")
	case errors.Is(err, service.ErrEmptyFile):
		writeError(w, http.StatusBadRequest, err.Error(), "EMPTY_FILE")
	default:
		h.logger.Error("records request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
