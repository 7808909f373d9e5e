package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Quiz belongs to a module and is graded against its passing score.
type Quiz struct {
	ID               uuid.UUID `json:"id"`
	ModuleID         uuid.UUID `json:"module_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	PassingScore     float64   `json:"passing_score"`
	MaxAttempts      *int      `json:"max_attempts,omitempty"`
	TimeLimitMinutes *int      `json:"time_limit_minutes,omitempty"`
	IsPublished      bool      `json:"is_published"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
)

// QuizQuestion is a single question with its canonical correct answer.
type QuizQuestion struct {
	ID            uuid.UUID       `json:"id"`
	QuizID        uuid.UUID       `json:"quiz_id"`
	QuestionText  string          `json:"question_text"`
	QuestionType  QuestionType    `json:"question_type"`
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectAnswer string          `json:"correct_answer"`
	Points        float64         `json:"points"`
	Position      int             `json:"position"`
}

// QuizPayload is the Redis-cached paper sent to students (no correct answers).
type QuizPayload struct {
	QuizID           uuid.UUID            `json:"quiz_id"`
	Title            string               `json:"title"`
	PassingScore     float64              `json:"passing_score"`
	TimeLimitMinutes *int                 `json:"time_limit_minutes,omitempty"`
	Questions        []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question stripped of its correct answer.
type QuestionForStudent struct {
	ID           uuid.UUID       `json:"id"`
	QuestionText string          `json:"question_text"`
	QuestionType QuestionType    `json:"question_type"`
	Options      json.RawMessage `json:"options,omitempty"`
	Points       float64         `json:"points"`
	Position     int             `json:"position"`
}

// CreateQuizRequest is the payload for creating a quiz under a module.
type CreateQuizRequest struct {
	Title            string  `json:"title" binding:"required,min=1,max=255"`
	Description      string  `json:"description" binding:"omitempty,max=2000"`
	PassingScore     float64 `json:"passing_score" binding:"min=0,max=100"`
	MaxAttempts      *int    `json:"max_attempts" binding:"omitempty,min=1"`
	TimeLimitMinutes *int    `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
}

// AddQuestionRequest is the payload for adding a question to a quiz.
type AddQuestionRequest struct {
	QuestionText  string          `json:"question_text" binding:"required,min=1,max=2000"`
	QuestionType  string          `json:"question_type" binding:"required,oneof=MULTIPLE_CHOICE TRUE_FALSE SHORT_ANSWER"`
	Options       json.RawMessage `json:"options" binding:"omitempty"`
	CorrectAnswer string          `json:"correct_answer" binding:"required,max=500"`
	Points        float64         `json:"points" binding:"required,gt=0"`
	Position      int             `json:"position" binding:"min=0"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing a quiz's questions.
type ReplaceQuestionsRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// QuestionStat is the aggregated difficulty record for a single question,
// maintained by the background stats worker.
type QuestionStat struct {
	QuestionID       uuid.UUID `json:"question_id"`
	TimesAnswered    int64     `json:"times_answered"`
	TimesCorrect     int64     `json:"times_correct"`
	TotalTimeSeconds int64     `json:"total_time_seconds"`
}

// QuestionStatDelta is one queued increment for the stats worker, produced
// per answered question at submission time.
type QuestionStatDelta struct {
	QuestionID  uuid.UUID `json:"question_id"`
	Correct     bool      `json:"correct"`
	TimeSeconds int       `json:"time_seconds"`
}
