package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriterionVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Criterion
	}{
		{
			name: "lesson completion",
			raw:  `{"type":"lesson_completion","count":10}`,
			want: LessonCompletionCriterion{Count: 10},
		},
		{
			name: "module completion",
			raw:  `{"type":"module_completion","count":3}`,
			want: ModuleCompletionCriterion{Count: 3},
		},
		{
			name: "course completion",
			raw:  `{"type":"course_completion","min_percentage":80,"count":2}`,
			want: CourseCompletionCriterion{MinPercentage: 80, Count: 2},
		},
		{
			name: "quiz score all quizzes",
			raw:  `{"type":"quiz_score","min_score":90,"all_quizzes":true}`,
			want: QuizScoreCriterion{MinScore: 90, Count: 1, AllQuizzes: true},
		},
		{
			name: "first attempt",
			raw:  `{"type":"quiz_first_attempt","min_score":95}`,
			want: QuizFirstAttemptCriterion{MinScore: 95},
		},
		{
			name: "speed demon",
			raw:  `{"type":"speed_demon","max_minutes":3.5}`,
			want: SpeedDemonCriterion{MaxMinutes: 3.5},
		},
		{
			name: "total points",
			raw:  `{"type":"total_points","min_points":500}`,
			want: TotalPointsCriterion{MinPoints: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCriterion(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCriterionDefaults(t *testing.T) {
	c, err := ParseCriterion(json.RawMessage(`{"type":"lesson_completion"}`))
	require.NoError(t, err)
	assert.Equal(t, LessonCompletionCriterion{Count: 1}, c)

	c, err = ParseCriterion(json.RawMessage(`{"type":"course_completion"}`))
	require.NoError(t, err)
	assert.Equal(t, CourseCompletionCriterion{MinPercentage: 100, Count: 1}, c)

	c, err = ParseCriterion(json.RawMessage(`{"type":"speed_demon"}`))
	require.NoError(t, err)
	assert.Equal(t, SpeedDemonCriterion{MaxMinutes: 5}, c)

	c, err = ParseCriterion(json.RawMessage(`{"type":"total_points","min_points":0}`))
	require.NoError(t, err)
	assert.Equal(t, TotalPointsCriterion{MinPoints: 1}, c)
}

func TestParseCriterionRejectsUnknownType(t *testing.T) {
	_, err := ParseCriterion(json.RawMessage(`{"type":"world_domination","count":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown criterion type")

	_, err = ParseCriterion(json.RawMessage(`{"count":1}`))
	require.Error(t, err)

	_, err = ParseCriterion(json.RawMessage(`not json`))
	require.Error(t, err)
}

func TestCriterionEventGating(t *testing.T) {
	tests := []struct {
		criterion Criterion
		applies   []EventType
	}{
		{LessonCompletionCriterion{}, []EventType{EventLessonCompletion}},
		{ModuleCompletionCriterion{}, []EventType{EventModuleCompletion}},
		{CourseCompletionCriterion{}, []EventType{EventCourseCompletion, EventCertificateIssued}},
		{QuizScoreCriterion{}, []EventType{EventQuizCompletion}},
		{QuizFirstAttemptCriterion{}, []EventType{EventQuizCompletion}},
		{QuizAttemptsCriterion{}, []EventType{EventQuizCompletion}},
		{PerfectQuizCriterion{}, []EventType{EventPerfectQuiz}},
		{SpeedDemonCriterion{}, []EventType{EventSpeedDemon}},
		{NotesCreatedCriterion{}, []EventType{EventNoteCreated}},
		{BookmarksCreatedCriterion{}, []EventType{EventBookmarkCreated}},
		{TotalPointsCriterion{}, []EventType{EventPointsAwarded}},
		{ConsecutiveLoginDaysCriterion{}, nil},
	}

	allEvents := []EventType{
		EventLessonCompletion, EventModuleCompletion, EventCourseCompletion,
		EventQuizCompletion, EventPerfectQuiz, EventSpeedDemon,
		EventCertificateIssued, EventNoteCreated, EventBookmarkCreated,
		EventPointsAwarded,
	}

	for _, tt := range tests {
		expected := make(map[EventType]bool, len(tt.applies))
		for _, e := range tt.applies {
			expected[e] = true
		}
		for _, e := range allEvents {
			assert.Equal(t, expected[e], tt.criterion.AppliesTo(e),
				"%s on %s", tt.criterion.Type(), e)
		}
	}
}
