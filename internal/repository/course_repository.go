package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumina-lms/lumina-backend/internal/model"
)

// CourseRepository handles the content tree: courses, modules, lessons and
// projects.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `id, title, description, instructor_id, category, difficulty, status, created_at, updated_at`

// Create inserts a new course as DRAFT.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, instructor_id, category, difficulty, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Description, c.InstructorID, c.Category, c.Difficulty, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a course by its UUID.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.Category, &c.Difficulty, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update modifies a course's editable fields.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE courses
		 SET title = $1, description = $2, category = $3, difficulty = $4, updated_at = NOW()
		 WHERE id = $5`,
		c.Title, c.Description, c.Category, c.Difficulty, c.ID)
	return err
}

// UpdateStatus transitions a course's lifecycle state.
func (r *CourseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CourseStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE courses SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

// Delete removes a course and, through FK cascades, its content tree.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}

// ListPublishedPaginated retrieves the student-facing catalog with optional
// category/difficulty filters.
func (r *CourseRepository) ListPublishedPaginated(ctx context.Context, category, difficulty *string, limit, offset int) ([]model.Course, int, error) {
	baseQuery := `
		FROM courses
		WHERE status = 'PUBLISHED'
	`
	args := []any{}

	if category != nil && *category != "" {
		args = append(args, *category)
		baseQuery += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if difficulty != nil && *difficulty != "" {
		args = append(args, *difficulty)
		baseQuery += fmt.Sprintf(" AND difficulty = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + courseColumns + baseQuery +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.Category, &c.Difficulty, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

// ListByInstructorPaginated retrieves an instructor's own courses.
func (r *CourseRepository) ListByInstructorPaginated(ctx context.Context, instructorID, limit, offset int) ([]model.Course, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM courses WHERE instructor_id = $1`, instructorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+`
		 FROM courses
		 WHERE instructor_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, instructorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.Category, &c.Difficulty, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

// ─── Modules ───────────────────────────────────────────────────────────────

// CreateModule inserts a module into a course.
func (r *CourseRepository) CreateModule(ctx context.Context, m *model.Module) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO modules (course_id, title, summary, position)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		m.CourseID, m.Title, m.Summary, m.Position,
	).Scan(&m.ID)
}

// GetModuleByID retrieves a module.
func (r *CourseRepository) GetModuleByID(ctx context.Context, id uuid.UUID) (*model.Module, error) {
	m := &model.Module{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, title, summary, position FROM modules WHERE id = $1`, id,
	).Scan(&m.ID, &m.CourseID, &m.Title, &m.Summary, &m.Position)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListModulesByCourse retrieves a course's modules in position order.
func (r *CourseRepository) ListModulesByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Module, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, title, summary, position
		 FROM modules
		 WHERE course_id = $1
		 ORDER BY position, title`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []model.Module
	for rows.Next() {
		var m model.Module
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Summary, &m.Position); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// DeleteModule removes a module and its lessons/quizzes via cascades.
func (r *CourseRepository) DeleteModule(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM modules WHERE id = $1`, id)
	return err
}

// ─── Lessons ───────────────────────────────────────────────────────────────

// CreateLesson inserts a lesson into a module.
func (r *CourseRepository) CreateLesson(ctx context.Context, l *model.Lesson) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO lessons (module_id, title, content, video_url, duration_minutes, position, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		l.ModuleID, l.Title, l.Content, l.VideoURL, l.DurationMinutes, l.Position, l.IsPublished,
	).Scan(&l.ID)
}

// GetLessonByID retrieves a lesson.
func (r *CourseRepository) GetLessonByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	l := &model.Lesson{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, module_id, title, content, video_url, duration_minutes, position, is_published
		 FROM lessons WHERE id = $1`, id,
	).Scan(&l.ID, &l.ModuleID, &l.Title, &l.Content, &l.VideoURL, &l.DurationMinutes, &l.Position, &l.IsPublished)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetCourseIDForLesson resolves the course owning a lesson's module.
func (r *CourseRepository) GetCourseIDForLesson(ctx context.Context, lessonID uuid.UUID) (uuid.UUID, error) {
	var courseID uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT m.course_id
		 FROM lessons l
		 JOIN modules m ON l.module_id = m.id
		 WHERE l.id = $1`, lessonID,
	).Scan(&courseID)
	return courseID, err
}

// ListLessonsByModule retrieves a module's lessons in position order.
func (r *CourseRepository) ListLessonsByModule(ctx context.Context, moduleID uuid.UUID) ([]model.Lesson, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, module_id, title, content, video_url, duration_minutes, position, is_published
		 FROM lessons
		 WHERE module_id = $1
		 ORDER BY position, title`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []model.Lesson
	for rows.Next() {
		var l model.Lesson
		if err := rows.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Content, &l.VideoURL, &l.DurationMinutes, &l.Position, &l.IsPublished); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// UpdateLesson modifies a lesson's editable fields.
func (r *CourseRepository) UpdateLesson(ctx context.Context, l *model.Lesson) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lessons
		 SET title = $1, content = $2, video_url = $3, duration_minutes = $4, position = $5, is_published = $6
		 WHERE id = $7`,
		l.Title, l.Content, l.VideoURL, l.DurationMinutes, l.Position, l.IsPublished, l.ID)
	return err
}

// DeleteLesson removes a lesson.
func (r *CourseRepository) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	return err
}

// CountPublishedLessons returns the number of published lessons in a course.
// Denominator for the completion percentage.
func (r *CourseRepository) CountPublishedLessons(ctx context.Context, courseID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM lessons l
		 JOIN modules m ON l.module_id = m.id
		 WHERE m.course_id = $1 AND l.is_published`, courseID,
	).Scan(&count)
	return count, err
}

// CountPublishedLessonsInModule returns published lesson counts for one module.
func (r *CourseRepository) CountPublishedLessonsInModule(ctx context.Context, moduleID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM lessons WHERE module_id = $1 AND is_published`, moduleID,
	).Scan(&count)
	return count, err
}

// ─── Projects ──────────────────────────────────────────────────────────────

// CreateProject attaches a project to a course (optionally scoped to a module).
func (r *CourseRepository) CreateProject(ctx context.Context, p *model.Project) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO projects (course_id, module_id, title, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.CourseID, p.ModuleID, p.Title, p.Description,
	).Scan(&p.ID, &p.CreatedAt)
}

// ListProjectsByCourse retrieves a course's projects.
func (r *CourseRepository) ListProjectsByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, module_id, title, description, created_at
		 FROM projects
		 WHERE course_id = $1
		 ORDER BY created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.CourseID, &p.ModuleID, &p.Title, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project.
func (r *CourseRepository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}
