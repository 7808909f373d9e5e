package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumina-lms/lumina-backend/internal/model"
)

// LessonProgressRepository handles per-lesson progress data access.
type LessonProgressRepository struct {
	pool *pgxpool.Pool
}

// NewLessonProgressRepository creates a new LessonProgressRepository.
func NewLessonProgressRepository(pool *pgxpool.Pool) *LessonProgressRepository {
	return &LessonProgressRepository{pool: pool}
}

// MarkCompleted upserts a completed progress row for the lesson. Repeat
// completions accumulate time spent but keep the original completed_at.
// It reports whether this call was the first completion.
func (r *LessonProgressRepository) MarkCompleted(ctx context.Context, userID int, lessonID uuid.UUID, timeSpentMinutes int) (*model.LessonProgress, bool, error) {
	p := &model.LessonProgress{}
	var firstCompletion bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO lesson_progress (user_id, lesson_id, status, time_spent_minutes, completed_at)
		 VALUES ($1, $2, 'completed', $3, NOW())
		 ON CONFLICT (user_id, lesson_id) DO UPDATE
		 SET time_spent_minutes = lesson_progress.time_spent_minutes + EXCLUDED.time_spent_minutes,
		     status = 'completed',
		     completed_at = COALESCE(lesson_progress.completed_at, EXCLUDED.completed_at)
		 RETURNING id, user_id, lesson_id, status, time_spent_minutes, completed_at,
		           (xmax = 0) AS first_completion`,
		userID, lessonID, timeSpentMinutes,
	).Scan(&p.ID, &p.UserID, &p.LessonID, &p.Status, &p.TimeSpentMinutes, &p.CompletedAt, &firstCompletion)
	if err != nil {
		return nil, false, err
	}
	return p, firstCompletion, nil
}

// CountCompletedInCourse counts the user's completed published lessons in a
// course.
func (r *LessonProgressRepository) CountCompletedInCourse(ctx context.Context, userID int, courseID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM lesson_progress p
		 JOIN lessons l ON p.lesson_id = l.id
		 JOIN modules m ON l.module_id = m.id
		 WHERE p.user_id = $1 AND m.course_id = $2
		   AND p.status = 'completed' AND l.is_published`,
		userID, courseID,
	).Scan(&count)
	return count, err
}

// CountCompletedInModule counts the user's completed published lessons in a
// module.
func (r *LessonProgressRepository) CountCompletedInModule(ctx context.Context, userID int, moduleID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM lesson_progress p
		 JOIN lessons l ON p.lesson_id = l.id
		 WHERE p.user_id = $1 AND l.module_id = $2
		   AND p.status = 'completed' AND l.is_published`,
		userID, moduleID,
	).Scan(&count)
	return count, err
}

// ListByCourse retrieves the user's progress rows for every lesson in a
// course.
func (r *LessonProgressRepository) ListByCourse(ctx context.Context, userID int, courseID uuid.UUID) ([]model.LessonProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.user_id, p.lesson_id, p.status, p.time_spent_minutes, p.completed_at
		 FROM lesson_progress p
		 JOIN lessons l ON p.lesson_id = l.id
		 JOIN modules m ON l.module_id = m.id
		 WHERE p.user_id = $1 AND m.course_id = $2
		 ORDER BY m.position, l.position`,
		userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []model.LessonProgress
	for rows.Next() {
		var p model.LessonProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.LessonID, &p.Status, &p.TimeSpentMinutes, &p.CompletedAt); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}
