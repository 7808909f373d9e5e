package model

import (
	"time"

	"github.com/google/uuid"
)

// CourseStatus enumerates the lifecycle states of a course.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusArchived  CourseStatus = "ARCHIVED"
)

// Course is the root of the content tree: Course -> Module -> Lesson.
type Course struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	InstructorID int          `json:"instructor_id"`
	Category     string       `json:"category"`
	Difficulty   string       `json:"difficulty"`
	Status       CourseStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Module groups lessons and quizzes inside a course.
type Module struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary,omitempty"`
	Position int       `json:"position"`
}

// Lesson is a single unit of course content.
type Lesson struct {
	ID              uuid.UUID `json:"id"`
	ModuleID        uuid.UUID `json:"module_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content,omitempty"`
	VideoURL        *string   `json:"video_url,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	Position        int       `json:"position"`
	IsPublished     bool      `json:"is_published"`
}

// Project is a larger hands-on assignment attached to a course or module.
type Project struct {
	ID          uuid.UUID  `json:"id"`
	CourseID    uuid.UUID  `json:"course_id"`
	ModuleID    *uuid.UUID `json:"module_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateCourseRequest is the payload for creating a course (starts as DRAFT).
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	Category    string `json:"category" binding:"omitempty,max=100"`
	Difficulty  string `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
}

// UpdateCourseRequest is the payload for updating an existing course.
type UpdateCourseRequest struct {
	Title       string `json:"title" binding:"omitempty,min=3,max=255"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	Category    string `json:"category" binding:"omitempty,max=100"`
	Difficulty  string `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
}

// CreateModuleRequest is the payload for adding a module to a course.
type CreateModuleRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=255"`
	Summary  string `json:"summary" binding:"omitempty,max=2000"`
	Position int    `json:"position" binding:"min=0"`
}

// CreateLessonRequest is the payload for adding a lesson to a module.
type CreateLessonRequest struct {
	Title           string  `json:"title" binding:"required,min=1,max=255"`
	Content         string  `json:"content" binding:"omitempty"`
	VideoURL        *string `json:"video_url" binding:"omitempty,url"`
	DurationMinutes int     `json:"duration_minutes" binding:"min=0,max=600"`
	Position        int     `json:"position" binding:"min=0"`
	IsPublished     *bool   `json:"is_published" binding:"omitempty"`
}

// UpdateLessonRequest is the payload for editing a lesson. Pointer fields
// distinguish "leave unchanged" from an explicit zero value.
type UpdateLessonRequest struct {
	Title           string  `json:"title" binding:"omitempty,min=1,max=255"`
	Content         *string `json:"content" binding:"omitempty"`
	VideoURL        *string `json:"video_url" binding:"omitempty,url"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=0,max=600"`
	Position        *int    `json:"position" binding:"omitempty,min=0"`
	IsPublished     *bool   `json:"is_published" binding:"omitempty"`
}

// CreateProjectRequest is the payload for attaching a project.
type CreateProjectRequest struct {
	ModuleID    *uuid.UUID `json:"module_id" binding:"omitempty"`
	Title       string     `json:"title" binding:"required,min=1,max=255"`
	Description string     `json:"description" binding:"omitempty,max=5000"`
}
