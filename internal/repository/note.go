package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/notehub/notehub-go/internal/model"
)

var ErrNoteNotFound = errors.New("note not found")

const noteColumns = `id, user_id, title, content, tags, is_pinned, created_at, updated_at`

// NoteRepository handles note persistence operations. Every query that
// touches an existing note filters on both the note id and the owner id, so
// another user's note is indistinguishable from a missing one.
type NoteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a new note and sets the generated ID on the note struct.
func (r *NoteRepository) Create(ctx context.Context, note *model.Note) error {
	query := `INSERT INTO notes (user_id, title, content, tags, is_pinned) VALUES (?, ?, ?, ?, ?)`

	tags, err := marshalTags(note.Tags)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, note.UserID, note.Title, note.Content, tags, note.IsPinned)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	note.ID = id
	return nil
}

// GetByID retrieves a note by id, scoped to its owner.
func (r *NoteRepository) GetByID(ctx context.Context, userID, noteID int64) (*model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = ? AND user_id = ?`

	note, err := scanNote(r.db.QueryRowContext(ctx, query, noteID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// List retrieves one page of a user's notes plus the total match count.
// Pinned notes sort first, then most recently updated. An empty search or
// tag disables that filter.
func (r *NoteRepository) List(ctx context.Context, userID int64, search, tag string, limit, offset int) ([]model.Note, int, error) {
	where := `user_id = ?`
	args := []any{userID}

	if search != "" {
		where += ` AND (LOWER(title) LIKE ? OR LOWER(content) LIKE ?)`
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern, pattern)
	}
	if tag != "" {
		where += ` AND JSON_CONTAINS(tags, JSON_QUOTE(?))`
		args = append(args, tag)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM notes WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT ` + noteColumns + ` FROM notes WHERE ` + where +
		` ORDER BY is_pinned DESC, updated_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, listQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		notes = append(notes, *note)
	}

	return notes, total, rows.Err()
}

// Update rewrites a note's mutable fields and returns the fresh row. The
// owner filter makes updating another user's note a not-found.
func (r *NoteRepository) Update(ctx context.Context, note *model.Note) (*model.Note, error) {
	query := `UPDATE notes SET title = ?, content = ?, tags = ?, is_pinned = ? WHERE id = ? AND user_id = ?`

	tags, err := marshalTags(note.Tags)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, query, note.Title, note.Content, tags, note.IsPinned, note.ID, note.UserID); err != nil {
		return nil, err
	}

	// MySQL reports zero affected rows for a no-change update too, so the
	// rows-affected count cannot distinguish missing from identical. The
	// follow-up lookup settles it either way.
	return r.GetByID(ctx, note.UserID, note.ID)
}

// Delete removes a note, scoped to its owner.
func (r *NoteRepository) Delete(ctx context.Context, userID, noteID int64) error {
	query := `DELETE FROM notes WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, noteID, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// TogglePin flips a note's pinned flag in a single conditional update, so
// concurrent togglers cannot lose each other's flips, then returns the
// fresh row.
func (r *NoteRepository) TogglePin(ctx context.Context, userID, noteID int64) (*model.Note, error) {
	query := `UPDATE notes SET is_pinned = NOT is_pinned WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, noteID, userID)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNoteNotFound
	}

	return r.GetByID(ctx, userID, noteID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*model.Note, error) {
	var (
		note     model.Note
		tagsJSON []byte
	)

	err := row.Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content,
		&tagsJSON, &note.IsPinned, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &note.Tags); err != nil {
			return nil, err
		}
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	return &note, nil
}

// marshalTags encodes tags as a JSON array for the tags column, preserving
// order. nil becomes an empty array rather than SQL NULL.
func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}
