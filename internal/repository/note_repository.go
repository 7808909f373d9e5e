package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumina-lms/lumina-backend/internal/model"
)

// NoteRepository handles study note data access.
type NoteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create inserts a note.
func (r *NoteRepository) Create(ctx context.Context, n *model.Note) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO notes (user_id, lesson_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		n.UserID, n.LessonID, n.Body,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

// GetByID retrieves a note.
func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	n := &model.Note{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, lesson_id, body, created_at, updated_at
		 FROM notes WHERE id = $1`, id,
	).Scan(&n.ID, &n.UserID, &n.LessonID, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ListByUserAndLesson retrieves the user's notes on a lesson, oldest first.
func (r *NoteRepository) ListByUserAndLesson(ctx context.Context, userID int, lessonID uuid.UUID) ([]model.Note, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, lesson_id, body, created_at, updated_at
		 FROM notes
		 WHERE user_id = $1 AND lesson_id = $2
		 ORDER BY created_at`, userID, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.LessonID, &n.Body, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Update rewrites a note's body.
func (r *NoteRepository) Update(ctx context.Context, n *model.Note) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notes SET body = $1, updated_at = NOW() WHERE id = $2`,
		n.Body, n.ID)
	return err
}

// Delete removes a note.
func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	return err
}
