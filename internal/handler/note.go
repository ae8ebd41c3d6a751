package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/notehub/notehub-go/internal/middleware"
	"github.com/notehub/notehub-go/internal/model"
	"github.com/notehub/notehub-go/internal/service"
)

// NoteHandler handles HTTP requests for note operations.
type NoteHandler struct {
	service *service.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc *service.NoteService) *NoteHandler {
	return &NoteHandler{service: svc}
}

// HandleCreate handles POST /notes requests.
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	note, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		if isNoteValidationError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		slog.Error("note create failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Note created successfully",
		"note":    note,
	})
}

// HandleList handles GET /notes requests.
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	query := r.URL.Query()
	params := service.ListParams{
		Search: query.Get("search"),
		Tag:    query.Get("tag"),
	}
	params.Page, _ = strconv.Atoi(query.Get("page"))
	params.Limit, _ = strconv.Atoi(query.Get("limit"))

	resp, err := h.service.List(r.Context(), user.ID, params)
	if err != nil {
		slog.Error("note list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /notes/{id} requests.
func (h *NoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, noteID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	note, err := h.service.GetByID(r.Context(), user.ID, noteID)
	if err != nil {
		h.writeNoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]model.NoteResponse{"note": note})
}

// HandleUpdate handles PUT /notes/{id} requests.
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, noteID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	var req model.NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	note, err := h.service.Update(r.Context(), user.ID, noteID, req)
	if err != nil {
		if isNoteValidationError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		h.writeNoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Note updated successfully",
		"note":    note,
	})
}

// HandleDelete handles DELETE /notes/{id} requests.
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, noteID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, noteID); err != nil {
		h.writeNoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted successfully"})
}

// HandleTogglePin handles PATCH /notes/{id}/toggle-pin requests.
func (h *NoteHandler) HandleTogglePin(w http.ResponseWriter, r *http.Request) {
	user, noteID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	note, err := h.service.TogglePin(r.Context(), user.ID, noteID)
	if err != nil {
		h.writeNoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Note pin status updated",
		"note":    note,
	})
}

// requestScope pulls the authenticated user and the note id out of the
// request. An unparsable id is reported as not-found, the same as a missing
// note, so probing ids leaks nothing.
func (h *NoteHandler) requestScope(w http.ResponseWriter, r *http.Request) (*model.User, int64, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return nil, 0, false
	}

	noteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || noteID < 1 {
		writeJSON(w, http.StatusNotFound, errorResponse(service.ErrNoteNotFound.Error()))
		return nil, 0, false
	}

	return user, noteID, true
}

func (h *NoteHandler) writeNoteError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		return
	}
	slog.Error("note operation failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
}

func isNoteValidationError(err error) bool {
	return errors.Is(err, service.ErrTitleRequired) ||
		errors.Is(err, service.ErrTitleTooLong) ||
		errors.Is(err, service.ErrContentRequired) ||
		errors.Is(err, service.ErrContentTooLong)
}
