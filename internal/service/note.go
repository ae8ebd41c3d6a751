package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/notehub/notehub-go/internal/model"
	"github.com/notehub/notehub-go/internal/repository"
)

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title must be at most 200 characters")
	ErrContentRequired = errors.New("content is required")
	ErrContentTooLong  = errors.New("content must be at most 10000 characters")
	ErrNoteNotFound    = errors.New("note not found")
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000

	defaultPageLimit = 10
	maxPageLimit     = 100
)

// NoteStore is the persistence surface the note service needs.
type NoteStore interface {
	Create(ctx context.Context, note *model.Note) error
	GetByID(ctx context.Context, userID, noteID int64) (*model.Note, error)
	List(ctx context.Context, userID int64, search, tag string, limit, offset int) ([]model.Note, int, error)
	Update(ctx context.Context, note *model.Note) (*model.Note, error)
	Delete(ctx context.Context, userID, noteID int64) error
	TogglePin(ctx context.Context, userID, noteID int64) (*model.Note, error)
}

// ListParams describes a note listing request before normalization.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Tag    string
}

// NoteService handles note business logic for a single authenticated owner.
type NoteService struct {
	notes NoteStore
}

// NewNoteService creates a new NoteService.
func NewNoteService(notes NoteStore) *NoteService {
	return &NoteService{notes: notes}
}

// Create validates and persists a new note for the owner.
func (s *NoteService) Create(ctx context.Context, userID int64, req model.NoteRequest) (model.NoteResponse, error) {
	title, content, err := validateNote(req)
	if err != nil {
		return model.NoteResponse{}, err
	}

	note := &model.Note{
		UserID:   userID,
		Title:    title,
		Content:  content,
		Tags:     cleanTags(req.Tags),
		IsPinned: req.IsPinned,
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return model.NoteResponse{}, err
	}

	return note.ToResponse(), nil
}

// List returns one page of the owner's notes, pinned first then most
// recently updated, with the pagination window echoed back.
func (s *NoteService) List(ctx context.Context, userID int64, params ListParams) (model.NoteListResponse, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := (page - 1) * limit

	notes, total, err := s.notes.List(ctx, userID, strings.TrimSpace(params.Search), strings.TrimSpace(params.Tag), limit, offset)
	if err != nil {
		return model.NoteListResponse{}, err
	}

	responses := make([]model.NoteResponse, len(notes))
	for i := range notes {
		responses[i] = notes[i].ToResponse()
	}

	return model.NoteListResponse{
		Notes: responses,
		Pagination: model.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}

// GetByID returns a single note owned by the caller.
func (s *NoteService) GetByID(ctx context.Context, userID, noteID int64) (model.NoteResponse, error) {
	note, err := s.notes.GetByID(ctx, userID, noteID)
	if err != nil {
		return model.NoteResponse{}, mapNoteErr(err)
	}
	return note.ToResponse(), nil
}

// Update re-validates and rewrites a note owned by the caller.
func (s *NoteService) Update(ctx context.Context, userID, noteID int64, req model.NoteRequest) (model.NoteResponse, error) {
	title, content, err := validateNote(req)
	if err != nil {
		return model.NoteResponse{}, err
	}

	note := &model.Note{
		ID:       noteID,
		UserID:   userID,
		Title:    title,
		Content:  content,
		Tags:     cleanTags(req.Tags),
		IsPinned: req.IsPinned,
	}

	updated, err := s.notes.Update(ctx, note)
	if err != nil {
		return model.NoteResponse{}, mapNoteErr(err)
	}
	return updated.ToResponse(), nil
}

// Delete hard-deletes a note owned by the caller.
func (s *NoteService) Delete(ctx context.Context, userID, noteID int64) error {
	return mapNoteErr(s.notes.Delete(ctx, userID, noteID))
}

// TogglePin flips a note's pinned flag and returns the updated note.
func (s *NoteService) TogglePin(ctx context.Context, userID, noteID int64) (model.NoteResponse, error) {
	note, err := s.notes.TogglePin(ctx, userID, noteID)
	if err != nil {
		return model.NoteResponse{}, mapNoteErr(err)
	}
	return note.ToResponse(), nil
}

func validateNote(req model.NoteRequest) (title, content string, err error) {
	title = strings.TrimSpace(req.Title)
	if title == "" {
		return "", "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", "", ErrTitleTooLong
	}
	content = req.Content
	if content == "" {
		return "", "", ErrContentRequired
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return "", "", ErrContentTooLong
	}
	return title, content, nil
}

// cleanTags trims each tag and drops empties, keeping the caller's order.
func cleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return cleaned
}

func mapNoteErr(err error) error {
	if errors.Is(err, repository.ErrNoteNotFound) {
		return ErrNoteNotFound
	}
	return err
}
