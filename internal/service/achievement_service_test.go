package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStats answers evaluator queries from fixed values.
type fakeStats struct {
	lessons          int
	modules          int
	courses          int
	attemptsWithMin  int
	quizzesWithMin   int
	publishedQuizzes int
	firstScore       float64
	hasFirstAttempt  bool
	attempts         int
	perfects         int
	notes            int
	bookmarks        int
	points           int
}

func (f *fakeStats) CountCompletedLessons(context.Context, int) (int, error) { return f.lessons, nil }
func (f *fakeStats) CountCompletedModules(context.Context, int) (int, error) { return f.modules, nil }
func (f *fakeStats) CountCompletedCourses(context.Context, int, float64) (int, error) {
	return f.courses, nil
}
func (f *fakeStats) CountAttemptsWithMinScore(context.Context, int, float64) (int, error) {
	return f.attemptsWithMin, nil
}
func (f *fakeStats) CountQuizzesWithMinScore(context.Context, int, float64) (int, error) {
	return f.quizzesWithMin, nil
}
func (f *fakeStats) CountPublishedQuizzes(context.Context) (int, error) {
	return f.publishedQuizzes, nil
}
func (f *fakeStats) FirstAttemptScore(context.Context, int, uuid.UUID) (float64, bool, error) {
	return f.firstScore, f.hasFirstAttempt, nil
}
func (f *fakeStats) CountAttempts(context.Context, int) (int, error)      { return f.attempts, nil }
func (f *fakeStats) CountPerfectScores(context.Context, int) (int, error) { return f.perfects, nil }
func (f *fakeStats) CountNotes(context.Context, int) (int, error)         { return f.notes, nil }
func (f *fakeStats) CountBookmarks(context.Context, int) (int, error)     { return f.bookmarks, nil }
func (f *fakeStats) TotalPoints(context.Context, int) (int, error)        { return f.points, nil }

func evaluatorWith(stats AchievementStats) *AchievementService {
	return &AchievementService{stats: stats, log: zerolog.Nop()}
}

func TestEvaluateCountThresholds(t *testing.T) {
	s := evaluatorWith(&fakeStats{lessons: 9, modules: 3, courses: 1, notes: 10, bookmarks: 4, points: 500})
	ctx := context.Background()
	ectx := &model.EventContext{}

	tests := []struct {
		name      string
		criterion model.Criterion
		want      bool
	}{
		{"lessons below threshold", model.LessonCompletionCriterion{Count: 10}, false},
		{"lessons at threshold", model.LessonCompletionCriterion{Count: 9}, true},
		{"modules", model.ModuleCompletionCriterion{Count: 3}, true},
		{"courses", model.CourseCompletionCriterion{MinPercentage: 100, Count: 2}, false},
		{"notes", model.NotesCreatedCriterion{Count: 10}, true},
		{"bookmarks", model.BookmarksCreatedCriterion{Count: 5}, false},
		{"total points", model.TotalPointsCriterion{MinPoints: 500}, true},
		{"total points above", model.TotalPointsCriterion{MinPoints: 501}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.evaluate(ctx, 1, tt.criterion, ectx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateQuizScoreAllQuizzes(t *testing.T) {
	ctx := context.Background()
	ectx := &model.EventContext{}

	s := evaluatorWith(&fakeStats{quizzesWithMin: 4, publishedQuizzes: 4})
	got, err := s.evaluate(ctx, 1, model.QuizScoreCriterion{MinScore: 90, AllQuizzes: true}, ectx)
	require.NoError(t, err)
	assert.True(t, got)

	s = evaluatorWith(&fakeStats{quizzesWithMin: 3, publishedQuizzes: 4})
	got, err = s.evaluate(ctx, 1, model.QuizScoreCriterion{MinScore: 90, AllQuizzes: true}, ectx)
	require.NoError(t, err)
	assert.False(t, got)

	// Mastery is per quiz; a pile of repeat attempts on one quiz does not
	// cover the catalog.
	s = evaluatorWith(&fakeStats{attemptsWithMin: 10, quizzesWithMin: 1, publishedQuizzes: 4})
	got, err = s.evaluate(ctx, 1, model.QuizScoreCriterion{MinScore: 90, AllQuizzes: true}, ectx)
	require.NoError(t, err)
	assert.False(t, got)

	// No published quizzes means nothing to master, never a free unlock.
	s = evaluatorWith(&fakeStats{quizzesWithMin: 0, publishedQuizzes: 0})
	got, err = s.evaluate(ctx, 1, model.QuizScoreCriterion{MinScore: 90, AllQuizzes: true}, ectx)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluateQuizScoreCountsAttempts(t *testing.T) {
	ctx := context.Background()
	ectx := &model.EventContext{}
	criterion := model.QuizScoreCriterion{MinScore: 90, Count: 5}

	// Five qualifying attempts satisfy the count even when they all target
	// the same quiz.
	s := evaluatorWith(&fakeStats{attemptsWithMin: 5, quizzesWithMin: 1})
	got, err := s.evaluate(ctx, 1, criterion, ectx)
	require.NoError(t, err)
	assert.True(t, got)

	s = evaluatorWith(&fakeStats{attemptsWithMin: 4, quizzesWithMin: 4})
	got, err = s.evaluate(ctx, 1, criterion, ectx)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluateFirstAttempt(t *testing.T) {
	ctx := context.Background()
	quizID := uuid.New()
	criterion := model.QuizFirstAttemptCriterion{MinScore: 90}

	s := evaluatorWith(&fakeStats{firstScore: 92, hasFirstAttempt: true})
	got, err := s.evaluate(ctx, 1, criterion, &model.EventContext{QuizID: &quizID})
	require.NoError(t, err)
	assert.True(t, got)

	s = evaluatorWith(&fakeStats{firstScore: 89.99, hasFirstAttempt: true})
	got, err = s.evaluate(ctx, 1, criterion, &model.EventContext{QuizID: &quizID})
	require.NoError(t, err)
	assert.False(t, got)

	// Without a quiz in the event context there is nothing to check.
	s = evaluatorWith(&fakeStats{firstScore: 100, hasFirstAttempt: true})
	got, err = s.evaluate(ctx, 1, criterion, &model.EventContext{})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluateSpeedDemon(t *testing.T) {
	ctx := context.Background()
	criterion := model.SpeedDemonCriterion{MaxMinutes: 5}
	s := evaluatorWith(&fakeStats{})

	minutes := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		ectx model.EventContext
		want bool
	}{
		{"fast pass", model.EventContext{Passed: true, TimeTakenMinutes: minutes(4.9)}, true},
		{"exactly at limit", model.EventContext{Passed: true, TimeTakenMinutes: minutes(5)}, false},
		{"zero minutes is suspect", model.EventContext{Passed: true, TimeTakenMinutes: minutes(0)}, false},
		{"fast but failed", model.EventContext{Passed: false, TimeTakenMinutes: minutes(2)}, false},
		{"no timing data", model.EventContext{Passed: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.evaluate(ctx, 1, criterion, &tt.ectx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateConsecutiveLoginDaysNeverUnlocks(t *testing.T) {
	s := evaluatorWith(&fakeStats{})
	got, err := s.evaluate(context.Background(), 1, model.ConsecutiveLoginDaysCriterion{Days: 1}, &model.EventContext{})
	require.NoError(t, err)
	assert.False(t, got)
}
