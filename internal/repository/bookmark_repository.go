package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumina-lms/lumina-backend/internal/model"
)

// BookmarkRepository handles bookmark data access.
type BookmarkRepository struct {
	pool *pgxpool.Pool
}

// NewBookmarkRepository creates a new BookmarkRepository.
func NewBookmarkRepository(pool *pgxpool.Pool) *BookmarkRepository {
	return &BookmarkRepository{pool: pool}
}

// Create bookmarks a lesson. Bookmarking twice is a no-op; the second return
// reports whether a new row was created.
func (r *BookmarkRepository) Create(ctx context.Context, userID int, lessonID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO bookmarks (user_id, lesson_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, lesson_id) DO NOTHING`,
		userID, lessonID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser retrieves the user's bookmarks, newest first.
func (r *BookmarkRepository) ListByUser(ctx context.Context, userID int) ([]model.Bookmark, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, lesson_id, created_at
		 FROM bookmarks
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []model.Bookmark
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.LessonID, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// Delete removes a bookmark by (user, lesson).
func (r *BookmarkRepository) Delete(ctx context.Context, userID int, lessonID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND lesson_id = $2`,
		userID, lessonID)
	return err
}
