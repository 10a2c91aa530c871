package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"zennote/apperr"
	"zennote/auth"
	"zennote/models"
)

type NoteRepository interface {
	ListByOwner(ctx context.Context, userID string) ([]models.Note, error)
	Create(ctx context.Context, n *models.Note) error
	Get(ctx context.Context, id string) (*models.Note, error)
	Update(ctx context.Context, n *models.Note) error
	Delete(ctx context.Context, id, userID string) error
}

type NotesHandler struct {
	notes NoteRepository
	log   *slog.Logger
}

func NewNotesHandler(notes NoteRepository, log *slog.Logger) *NotesHandler {
	return &NotesHandler{notes: notes, log: log}
}

type createNoteRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Tag         string `json:"tag"`
}

var noteMessages = map[string]string{
	"title":       "Title is required",
	"description": "Description is required",
}

type noteResponse struct {
	Success bool         `json:"success"`
	Note    *models.Note `json:"note"`
}

func getUserID(r *http.Request) (string, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", apperr.Unauthenticated("Access denied: No token provided")
	}
	return userID, nil
}

func (h *NotesHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	notes, err := h.notes.ListByOwner(r.Context(), userID)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "notes": notes})
}

func (h *NotesHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	var req createNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req, "Title and description are required", noteMessages); err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	note := &models.Note{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Tag:         strings.TrimSpace(req.Tag),
	}
	if err := h.notes.Create(r.Context(), note); err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	WriteJSON(w, http.StatusCreated, noteResponse{Success: true, Note: note})
}

// ownedNote loads the note named in the path and checks it belongs to the caller.
func (h *NotesHandler) ownedNote(r *http.Request) (*models.Note, error) {
	userID, err := getUserID(r)
	if err != nil {
		return nil, err
	}
	note, err := h.notes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		h.log.WarnContext(r.Context(), "note ownership mismatch", "note_id", note.ID, "user_id", userID)
		return nil, apperr.Forbidden("Unauthorized action")
	}
	return note, nil
}

func (h *NotesHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var patch models.NotePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	note, err := h.ownedNote(r)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	if patch.Apply(note) {
		if err := h.notes.Update(r.Context(), note); err != nil {
			WriteError(w, r, h.log, err)
			return
		}
	}
	WriteJSON(w, http.StatusOK, noteResponse{Success: true, Note: note})
}

func (h *NotesHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.ownedNote(r)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	if err := h.notes.Delete(r.Context(), note.ID, note.UserID); err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Note deleted successfully"})
}
