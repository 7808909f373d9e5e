package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumina-lms/lumina-backend/internal/model"
)

// EnrollmentRepository handles enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

const enrollmentColumns = `id, user_id, course_id, status, completion_percentage, enrolled_at, completed_at`

// Create enrolls a user in a course. Re-enrolling is a no-op; the existing
// row is returned either way so callers cannot tell a replay from a first
// enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, userID int, courseID uuid.UUID) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := r.pool.QueryRow(ctx,
		`WITH ins AS (
		   INSERT INTO enrollments (user_id, course_id)
		   VALUES ($1, $2)
		   ON CONFLICT (user_id, course_id) DO NOTHING
		   RETURNING `+enrollmentColumns+`
		 )
		 SELECT * FROM ins
		 UNION ALL
		 SELECT `+enrollmentColumns+` FROM enrollments WHERE user_id = $1 AND course_id = $2
		 LIMIT 1`,
		userID, courseID,
	).Scan(&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.CompletionPercentage, &e.EnrolledAt, &e.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Losing the insert race exactly as the winner commits leaves the
		// statement's snapshot without the winner's row; a fresh statement
		// sees it.
		err = r.pool.QueryRow(ctx,
			`SELECT `+enrollmentColumns+` FROM enrollments WHERE user_id = $1 AND course_id = $2`,
			userID, courseID,
		).Scan(&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.CompletionPercentage, &e.EnrolledAt, &e.CompletedAt)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByUserAndCourse retrieves an enrollment.
func (r *EnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID int, courseID uuid.UUID) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+enrollmentColumns+`
		 FROM enrollments
		 WHERE user_id = $1 AND course_id = $2`,
		userID, courseID,
	).Scan(&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.CompletionPercentage, &e.EnrolledAt, &e.CompletedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByUser retrieves a user's enrollments, newest first.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID int) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+enrollmentColumns+`
		 FROM enrollments
		 WHERE user_id = $1
		 ORDER BY enrolled_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.CompletionPercentage, &e.EnrolledAt, &e.CompletedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// CountByCourse returns the number of enrollments in a course.
func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID).Scan(&count)
	return count, err
}

// UpdateProgress sets the completion percentage and, when it reaches 100,
// marks the enrollment completed. It returns the percentage the row held
// before the update so the caller can detect the crossing into completion;
// the subselect is evaluated against the pre-update snapshot.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, userID int, courseID uuid.UUID, percentage float64) (previous float64, err error) {
	err = r.pool.QueryRow(ctx,
		`UPDATE enrollments
		 SET completion_percentage = $3,
		     status = CASE WHEN $3 >= 100 THEN 'completed' ELSE status END,
		     completed_at = CASE WHEN $3 >= 100 AND completed_at IS NULL THEN NOW() ELSE completed_at END
		 WHERE user_id = $1 AND course_id = $2
		 RETURNING (SELECT completion_percentage FROM enrollments WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID, percentage,
	).Scan(&previous)
	return previous, err
}

// SetStatus changes an enrollment's status without touching progress.
func (r *EnrollmentRepository) SetStatus(ctx context.Context, userID int, courseID uuid.UUID, status model.EnrollmentStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE enrollments SET status = $3 WHERE user_id = $1 AND course_id = $2`,
		userID, courseID, status)
	return err
}
