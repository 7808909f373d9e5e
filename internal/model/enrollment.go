package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus enumerates enrollment states.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusInactive  EnrollmentStatus = "inactive"
)

// Enrollment links a user to a course. CompletionPercentage is a cache
// derived from lesson_progress rows, never a source of truth.
type Enrollment struct {
	ID                   uuid.UUID        `json:"id"`
	UserID               int              `json:"user_id"`
	CourseID             uuid.UUID        `json:"course_id"`
	Status               EnrollmentStatus `json:"status"`
	CompletionPercentage float64          `json:"completion_percentage"`
	EnrolledAt           time.Time        `json:"enrolled_at"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
}

// ProgressStatus enumerates per-lesson progress states.
type ProgressStatus string

const (
	ProgressStatusNotStarted ProgressStatus = "not_started"
	ProgressStatusInProgress ProgressStatus = "in_progress"
	ProgressStatusCompleted  ProgressStatus = "completed"
)

// LessonProgress is the source of truth for completion aggregation.
type LessonProgress struct {
	ID               uuid.UUID      `json:"id"`
	UserID           int            `json:"user_id"`
	LessonID         uuid.UUID      `json:"lesson_id"`
	Status           ProgressStatus `json:"status"`
	TimeSpentMinutes int            `json:"time_spent_minutes"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

// CompleteLessonRequest is the payload for marking a lesson complete.
type CompleteLessonRequest struct {
	TimeSpentMinutes int `json:"time_spent_minutes" binding:"gte=0,lte=600"`
}

// CompleteLessonResult is returned after a lesson completion, including any
// achievements the action unlocked.
type CompleteLessonResult struct {
	Progress             *LessonProgress       `json:"progress"`
	CompletionPercentage float64               `json:"completion_percentage"`
	CourseCompleted      bool                  `json:"course_completed"`
	Certificate          *Certificate          `json:"certificate,omitempty"`
	UnlockedAchievements []UnlockedAchievement `json:"unlocked_achievements"`
}

// CourseProgress is the per-course progress detail for a student.
type CourseProgress struct {
	Enrollment *Enrollment      `json:"enrollment"`
	Lessons    []LessonProgress `json:"lessons"`
}
