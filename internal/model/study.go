package model

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-form study note attached to a lesson.
type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	LessonID  uuid.UUID `json:"lesson_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bookmark marks a lesson for later; at most one per (user, lesson).
type Bookmark struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	LessonID  uuid.UUID `json:"lesson_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateNoteRequest is the payload for creating a note.
type CreateNoteRequest struct {
	Body string `json:"body" binding:"required,min=1,max=10000"`
}

// UpdateNoteRequest is the payload for editing a note.
type UpdateNoteRequest struct {
	Body string `json:"body" binding:"required,min=1,max=10000"`
}
