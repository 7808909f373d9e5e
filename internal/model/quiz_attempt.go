package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates quiz attempt states. GRADED is terminal and only
// reached through an instructor override; auto-graded attempts may remain
// SUBMITTED forever.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusSubmitted  AttemptStatus = "SUBMITTED"
	AttemptStatusGraded     AttemptStatus = "GRADED"
)

// QuizAttempt records one numbered try at a quiz. AttemptNumber is 1-based
// and strictly increasing per (user, quiz).
type QuizAttempt struct {
	ID               uuid.UUID     `json:"id"`
	QuizID           uuid.UUID     `json:"quiz_id"`
	UserID           int           `json:"user_id"`
	AttemptNumber    int           `json:"attempt_number"`
	Score            float64       `json:"score"`
	InstructorScore  *float64      `json:"instructor_score,omitempty"`
	Passed           bool          `json:"passed"`
	Status           AttemptStatus `json:"status"`
	TimeTakenMinutes *float64      `json:"time_taken_minutes,omitempty"`
	Feedback         *string       `json:"feedback,omitempty"`
	GradedBy         *int          `json:"graded_by,omitempty"`
	GradedAt         *time.Time    `json:"graded_at,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	SubmittedAt      *time.Time    `json:"submitted_at,omitempty"`
}

// EffectiveScore returns the instructor override when present, otherwise the
// auto-computed score. The Passed flag is always driven by the auto score.
func (a *QuizAttempt) EffectiveScore() float64 {
	if a.InstructorScore != nil {
		return *a.InstructorScore
	}
	return a.Score
}

// QuizAttemptAnswer is the per-question snapshot persisted with an attempt.
// Question text and point values are copied at submission time so historical
// attempts stay readable if the quiz is later edited.
type QuizAttemptAnswer struct {
	ID               uuid.UUID `json:"id"`
	AttemptID        uuid.UUID `json:"attempt_id"`
	QuestionID       uuid.UUID `json:"question_id"`
	QuestionText     string    `json:"question_text"`
	SubmittedAnswer  string    `json:"submitted_answer"`
	IsCorrect        bool      `json:"is_correct"`
	PointsAwarded    float64   `json:"points_awarded"`
	PointsPossible   float64   `json:"points_possible"`
	TimeSpentSeconds *int      `json:"time_spent_seconds,omitempty"`
}

// SubmitAttemptRequest is the payload for submitting quiz answers.
// Answers maps question ID to the raw submitted answer; TimeSpent maps
// question ID to seconds spent (optional, used for difficulty analytics).
type SubmitAttemptRequest struct {
	Answers          map[string]string `json:"answers" binding:"required,min=1"`
	TimeSpent        map[string]int    `json:"time_spent" binding:"omitempty"`
	TimeTakenMinutes *float64          `json:"time_taken_minutes" binding:"omitempty,gte=0"`
}

// GradeAttemptRequest is the payload for an instructor grade override.
type GradeAttemptRequest struct {
	Score    *float64 `json:"score" binding:"required,gte=0,lte=100"`
	Feedback string   `json:"feedback" binding:"omitempty,max=5000"`
}

// SubmitAttemptResult is returned to the student after scoring.
type SubmitAttemptResult struct {
	Attempt              *QuizAttempt          `json:"attempt"`
	Answers              []QuizAttemptAnswer   `json:"answers"`
	UnlockedAchievements []UnlockedAchievement `json:"unlocked_achievements"`
}
