package model

import "time"

// Note represents a note in the database, always owned by a single user.
type Note struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	Tags      []string
	IsPinned  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ToResponse converts a Note to its API representation. The owner id is
// implied by the authenticated caller and not echoed back.
func (n *Note) ToResponse() NoteResponse {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      tags,
		IsPinned:  n.IsPinned,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// NoteRequest represents a note create or update request.
type NoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	IsPinned bool     `json:"isPinned"`
}

// NoteResponse represents note data in API responses.
type NoteResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pagination describes the page window of a note listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NoteListResponse represents a paginated note listing.
type NoteListResponse struct {
	Notes      []NoteResponse `json:"notes"`
	Pagination Pagination     `json:"pagination"`
}
