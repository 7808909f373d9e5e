package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(qt model.QuestionType, correct string, points float64) model.QuizQuestion {
	return model.QuizQuestion{
		ID:            uuid.New(),
		QuestionText:  "q",
		QuestionType:  qt,
		CorrectAnswer: correct,
		Points:        points,
	}
}

func TestScoreSubmissionWeighted(t *testing.T) {
	q1 := question(model.QuestionTypeMultipleChoice, "B", 10)
	q2 := question(model.QuestionTypeMultipleChoice, "C", 10)
	q3 := question(model.QuestionTypeTrueFalse, "true", 5)

	answers := map[string]string{
		q1.ID.String(): "B",    // correct, 10
		q2.ID.String(): "A",    // wrong
		q3.ID.String(): "TRUE", // correct, 5
	}

	score, snapshots := scoreSubmission([]model.QuizQuestion{q1, q2, q3}, answers)
	assert.Equal(t, 60.0, score) // 15 of 25
	require.Len(t, snapshots, 3)

	assert.True(t, snapshots[0].IsCorrect)
	assert.Equal(t, 10.0, snapshots[0].PointsAwarded)
	assert.False(t, snapshots[1].IsCorrect)
	assert.Equal(t, 0.0, snapshots[1].PointsAwarded)
	assert.Equal(t, 10.0, snapshots[1].PointsPossible)
	assert.True(t, snapshots[2].IsCorrect)
}

func TestScoreSubmissionRounding(t *testing.T) {
	q1 := question(model.QuestionTypeMultipleChoice, "A", 1)
	q2 := question(model.QuestionTypeMultipleChoice, "A", 1)
	q3 := question(model.QuestionTypeMultipleChoice, "A", 1)

	answers := map[string]string{q1.ID.String(): "A"}

	score, _ := scoreSubmission([]model.QuizQuestion{q1, q2, q3}, answers)
	assert.Equal(t, 33.33, score)
}

func TestScoreSubmissionUnansweredSnapshot(t *testing.T) {
	q := question(model.QuestionTypeShortAnswer, "gin", 4)

	score, snapshots := scoreSubmission([]model.QuizQuestion{q}, map[string]string{})
	assert.Equal(t, 0.0, score)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "", snapshots[0].SubmittedAnswer)
	assert.False(t, snapshots[0].IsCorrect)
	assert.Equal(t, 4.0, snapshots[0].PointsPossible)
}

func TestScoreSubmissionZeroPossiblePoints(t *testing.T) {
	score, snapshots := scoreSubmission(nil, map[string]string{"x": "y"})
	assert.Equal(t, 0.0, score)
	assert.Empty(t, snapshots)
}

func TestIsAnswerCorrect(t *testing.T) {
	tests := []struct {
		name      string
		question  model.QuizQuestion
		submitted string
		want      bool
	}{
		{"mc exact match", question(model.QuestionTypeMultipleChoice, "B", 1), "B", true},
		{"mc is case sensitive", question(model.QuestionTypeMultipleChoice, "B", 1), "b", false},
		{"tf case insensitive", question(model.QuestionTypeTrueFalse, "True", 1), "tRuE", true},
		{"tf wrong", question(model.QuestionTypeTrueFalse, "true", 1), "false", false},
		{"short answer trims and folds", question(model.QuestionTypeShortAnswer, "Gin", 1), "  gin ", true},
		{"short answer wrong", question(model.QuestionTypeShortAnswer, "gin", 1), "echo", false},
		{"empty is never correct", question(model.QuestionTypeShortAnswer, "", 1), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAnswerCorrect(tt.question, tt.submitted))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, round2(66.666666))
	assert.Equal(t, 33.33, round2(33.333333))
	assert.Equal(t, 100.0, round2(100))
	assert.Equal(t, 0.0, round2(0))
}
