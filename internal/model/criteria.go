package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// EventType names a domain occurrence that can trigger achievement checks.
type EventType string

const (
	EventLessonCompletion  EventType = "lesson_completion"
	EventModuleCompletion  EventType = "module_completion"
	EventCourseCompletion  EventType = "course_completion"
	EventQuizCompletion    EventType = "quiz_completion"
	EventPerfectQuiz       EventType = "perfect_quiz"
	EventSpeedDemon        EventType = "speed_demon"
	EventCertificateIssued EventType = "certificate_issued"
	EventNoteCreated       EventType = "note_created"
	EventBookmarkCreated   EventType = "bookmark_created"
	// EventPointsAwarded is emitted internally by the unlock engine after an
	// unlock added points, so total_points criteria become reachable without
	// re-evaluating them on every event.
	EventPointsAwarded EventType = "points_awarded"
)

// EventContext is the small payload attached to an event. All fields are
// optional; criteria only read what they need.
type EventContext struct {
	CourseID         *uuid.UUID `json:"course_id,omitempty"`
	ModuleID         *uuid.UUID `json:"module_id,omitempty"`
	LessonID         *uuid.UUID `json:"lesson_id,omitempty"`
	QuizID           *uuid.UUID `json:"quiz_id,omitempty"`
	AttemptID        *uuid.UUID `json:"attempt_id,omitempty"`
	Score            *float64   `json:"score,omitempty"`
	Passed           bool       `json:"passed,omitempty"`
	TimeTakenMinutes *float64   `json:"time_taken_minutes,omitempty"`
}

// CriterionType tags the serialized form of an unlock rule.
type CriterionType string

const (
	CriterionLessonCompletion     CriterionType = "lesson_completion"
	CriterionModuleCompletion     CriterionType = "module_completion"
	CriterionCourseCompletion     CriterionType = "course_completion"
	CriterionQuizScore            CriterionType = "quiz_score"
	CriterionQuizFirstAttempt     CriterionType = "quiz_first_attempt"
	CriterionQuizAttempts         CriterionType = "quiz_attempts"
	CriterionPerfectQuiz          CriterionType = "perfect_quiz"
	CriterionSpeedDemon           CriterionType = "speed_demon"
	CriterionNotesCreated         CriterionType = "notes_created"
	CriterionBookmarksCreated     CriterionType = "bookmarks_created"
	CriterionTotalPoints          CriterionType = "total_points"
	CriterionConsecutiveLoginDays CriterionType = "consecutive_login_days"
)

// Criterion is the closed union of unlock rules. Each variant carries only
// its own typed parameters; the evaluator switches exhaustively over the
// concrete types. Unknown type tags are rejected at parse time so a typo in
// a stored rule can never silently disable an achievement.
type Criterion interface {
	Type() CriterionType
	// AppliesTo reports whether the criterion should be evaluated in
	// response to the given event. This gate keeps evaluation cost bounded:
	// no rule is re-checked on events that cannot change its outcome.
	AppliesTo(event EventType) bool
}

// LessonCompletionCriterion unlocks after completing at least Count lessons.
type LessonCompletionCriterion struct {
	Count int `json:"count"`
}

func (LessonCompletionCriterion) Type() CriterionType { return CriterionLessonCompletion }
func (LessonCompletionCriterion) AppliesTo(e EventType) bool {
	return e == EventLessonCompletion
}

// ModuleCompletionCriterion unlocks after fully completing Count modules.
type ModuleCompletionCriterion struct {
	Count int `json:"count"`
}

func (ModuleCompletionCriterion) Type() CriterionType { return CriterionModuleCompletion }
func (ModuleCompletionCriterion) AppliesTo(e EventType) bool {
	return e == EventModuleCompletion
}

// CourseCompletionCriterion unlocks once any enrollment reaches
// MinPercentage (default 100) and at least Count courses qualify.
type CourseCompletionCriterion struct {
	MinPercentage float64 `json:"min_percentage"`
	Count         int     `json:"count"`
}

func (CourseCompletionCriterion) Type() CriterionType { return CriterionCourseCompletion }
func (CourseCompletionCriterion) AppliesTo(e EventType) bool {
	return e == EventCourseCompletion || e == EventCertificateIssued
}

// QuizScoreCriterion unlocks after Count attempts scoring at least MinScore,
// or — when AllQuizzes is set — after scoring at least MinScore on every
// published quiz.
type QuizScoreCriterion struct {
	MinScore   float64 `json:"min_score"`
	Count      int     `json:"count"`
	AllQuizzes bool    `json:"all_quizzes"`
}

func (QuizScoreCriterion) Type() CriterionType { return CriterionQuizScore }
func (QuizScoreCriterion) AppliesTo(e EventType) bool {
	return e == EventQuizCompletion
}

// QuizFirstAttemptCriterion unlocks when the first attempt at the quiz in
// the event context scored at least MinScore.
type QuizFirstAttemptCriterion struct {
	MinScore float64 `json:"min_score"`
}

func (QuizFirstAttemptCriterion) Type() CriterionType { return CriterionQuizFirstAttempt }
func (QuizFirstAttemptCriterion) AppliesTo(e EventType) bool {
	return e == EventQuizCompletion
}

// QuizAttemptsCriterion unlocks on attempt volume alone, regardless of score.
type QuizAttemptsCriterion struct {
	Count int `json:"count"`
}

func (QuizAttemptsCriterion) Type() CriterionType { return CriterionQuizAttempts }
func (QuizAttemptsCriterion) AppliesTo(e EventType) bool {
	return e == EventQuizCompletion
}

// PerfectQuizCriterion unlocks after Count attempts with a perfect score.
type PerfectQuizCriterion struct {
	Count int `json:"count"`
}

func (PerfectQuizCriterion) Type() CriterionType { return CriterionPerfectQuiz }
func (PerfectQuizCriterion) AppliesTo(e EventType) bool {
	return e == EventPerfectQuiz
}

// SpeedDemonCriterion unlocks when the attempt in the event context passed
// in strictly less than MaxMinutes (and more than zero) minutes.
type SpeedDemonCriterion struct {
	MaxMinutes float64 `json:"max_minutes"`
}

func (SpeedDemonCriterion) Type() CriterionType { return CriterionSpeedDemon }
func (SpeedDemonCriterion) AppliesTo(e EventType) bool {
	return e == EventSpeedDemon
}

// NotesCreatedCriterion unlocks after creating Count notes.
type NotesCreatedCriterion struct {
	Count int `json:"count"`
}

func (NotesCreatedCriterion) Type() CriterionType { return CriterionNotesCreated }
func (NotesCreatedCriterion) AppliesTo(e EventType) bool {
	return e == EventNoteCreated
}

// BookmarksCreatedCriterion unlocks after creating Count bookmarks.
type BookmarksCreatedCriterion struct {
	Count int `json:"count"`
}

func (BookmarksCreatedCriterion) Type() CriterionType { return CriterionBookmarksCreated }
func (BookmarksCreatedCriterion) AppliesTo(e EventType) bool {
	return e == EventBookmarkCreated
}

// TotalPointsCriterion unlocks once the aggregate achievement points reach
// MinPoints.
type TotalPointsCriterion struct {
	MinPoints int `json:"min_points"`
}

func (TotalPointsCriterion) Type() CriterionType { return CriterionTotalPoints }
func (TotalPointsCriterion) AppliesTo(e EventType) bool {
	return e == EventPointsAwarded
}

// ConsecutiveLoginDaysCriterion is accepted so existing catalogs load, but
// never evaluates true: there is no login-history table backing it. Known
// gap, kept as documented-disabled behavior.
type ConsecutiveLoginDaysCriterion struct {
	Days int `json:"days"`
}

func (ConsecutiveLoginDaysCriterion) Type() CriterionType { return CriterionConsecutiveLoginDays }
func (ConsecutiveLoginDaysCriterion) AppliesTo(EventType) bool {
	return false
}

// ParseCriterion decodes a stored unlock rule into its typed variant.
// Unknown type tags are an error; count-style parameters default to 1 and
// course completion defaults to 100%.
func ParseCriterion(raw json.RawMessage) (Criterion, error) {
	var envelope struct {
		Type CriterionType `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode criterion envelope: %w", err)
	}

	switch envelope.Type {
	case CriterionLessonCompletion:
		var c LessonCompletionCriterion
		return decodeCriterion(raw, &c, func() { c.Count = max(c.Count, 1) })
	case CriterionModuleCompletion:
		var c ModuleCompletionCriterion
		return decodeCriterion(raw, &c, func() { c.Count = max(c.Count, 1) })
	case CriterionCourseCompletion:
		var c CourseCompletionCriterion
		return decodeCriterion(raw, &c, func() {
			if c.MinPercentage <= 0 {
				c.MinPercentage = 100
			}
			c.Count = max(c.Count, 1)
		})
	case CriterionQuizScore:
		var c QuizScoreCriterion
		return decodeCriterion(raw, &c, func() { c.Count = max(c.Count, 1) })
	case CriterionQuizFirstAttempt:
		var c QuizFirstAttemptCriterion
		return decodeCriterion(raw, &c, nil)
	case CriterionQuizAttempts:
		var c QuizAttemptsCriterion
		return decodeCriterion(raw, &c, func() { c.Count = max(c.Count, 1) })
	case CriterionPerfectQuiz:
		var c PerfectQuizCriterion
		return decodeCriterion(raw, &c, func() { c.Count = max(c.Count, 1) })
	case CriterionSpeedDemon:
		var c SpeedDemonCriterion
		return decodeCriterion(raw, &c, func() {
			if c.MaxMinutes <= 0 {
				c.MaxMinutes = 5
			}
		})
	case CriterionNotesCreated:
		var c NotesCreatedCriterion
		return decodeCriterion(raw, &c, func() { c.Count = max(c.Count, 1) })
	case CriterionBookmarksCreated:
		var c BookmarksCreatedCriterion
		return decodeCriterion(raw, &c, func() { c.Count = max(c.Count, 1) })
	case CriterionTotalPoints:
		var c TotalPointsCriterion
		return decodeCriterion(raw, &c, func() { c.MinPoints = max(c.MinPoints, 1) })
	case CriterionConsecutiveLoginDays:
		var c ConsecutiveLoginDaysCriterion
		return decodeCriterion(raw, &c, func() { c.Days = max(c.Days, 1) })
	default:
		return nil, fmt.Errorf("unknown criterion type %q", envelope.Type)
	}
}

// decodeCriterion unmarshals raw into dst and applies parameter defaults.
func decodeCriterion[T Criterion](raw json.RawMessage, dst *T, defaults func()) (Criterion, error) {
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("decode %s criterion: %w", (*dst).Type(), err)
	}
	if defaults != nil {
		defaults()
	}
	return *dst, nil
}
