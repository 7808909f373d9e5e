package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AchievementStatsRepository answers the aggregate questions the unlock
// evaluator asks about a user's history. Every method is a single read-only
// query; the evaluator tolerates slightly stale answers because each event
// re-runs the evaluation.
type AchievementStatsRepository struct {
	pool *pgxpool.Pool
}

// NewAchievementStatsRepository creates a new AchievementStatsRepository.
func NewAchievementStatsRepository(pool *pgxpool.Pool) *AchievementStatsRepository {
	return &AchievementStatsRepository{pool: pool}
}

// CountCompletedLessons counts the user's lifetime completed lessons.
func (r *AchievementStatsRepository) CountCompletedLessons(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM lesson_progress WHERE user_id = $1 AND status = 'completed'`,
		userID).Scan(&count)
	return count, err
}

// CountCompletedModules counts modules in which the user has completed every
// published lesson. Modules without published lessons do not count.
func (r *AchievementStatsRepository) CountCompletedModules(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM (
		   SELECT l.module_id
		   FROM lessons l
		   LEFT JOIN lesson_progress p
		     ON p.lesson_id = l.id AND p.user_id = $1 AND p.status = 'completed'
		   WHERE l.is_published
		   GROUP BY l.module_id
		   HAVING COUNT(*) = COUNT(p.id)
		 ) done`, userID).Scan(&count)
	return count, err
}

// CountCompletedCourses counts the user's enrollments at or above the given
// completion percentage.
func (r *AchievementStatsRepository) CountCompletedCourses(ctx context.Context, userID int, minPercentage float64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments
		 WHERE user_id = $1 AND completion_percentage >= $2`,
		userID, minPercentage).Scan(&count)
	return count, err
}

// CountAttemptsWithMinScore counts the user's attempts with an effective
// score at or above the threshold. Repeat attempts at the same quiz all
// count.
func (r *AchievementStatsRepository) CountAttemptsWithMinScore(ctx context.Context, userID int, minScore float64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_attempts
		 WHERE user_id = $1 AND COALESCE(instructor_score, score) >= $2`,
		userID, minScore).Scan(&count)
	return count, err
}

// CountQuizzesWithMinScore counts distinct quizzes on which the user has at
// least one attempt with an effective score at or above the threshold.
func (r *AchievementStatsRepository) CountQuizzesWithMinScore(ctx context.Context, userID int, minScore float64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT quiz_id) FROM quiz_attempts
		 WHERE user_id = $1 AND COALESCE(instructor_score, score) >= $2`,
		userID, minScore).Scan(&count)
	return count, err
}

// CountPublishedQuizzes counts every published quiz in the catalog.
func (r *AchievementStatsRepository) CountPublishedQuizzes(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quizzes WHERE is_published`).Scan(&count)
	return count, err
}

// FirstAttemptScore retrieves the effective score of attempt number 1 at a
// quiz. The second return is false when the user has no first attempt.
func (r *AchievementStatsRepository) FirstAttemptScore(ctx context.Context, userID int, quizID uuid.UUID) (float64, bool, error) {
	var score float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(instructor_score, score) FROM quiz_attempts
		 WHERE user_id = $1 AND quiz_id = $2 AND attempt_number = 1`,
		userID, quizID).Scan(&score)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

// CountAttempts counts the user's lifetime quiz attempts.
func (r *AchievementStatsRepository) CountAttempts(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// CountPerfectScores counts the user's attempts with a 100 effective score.
func (r *AchievementStatsRepository) CountPerfectScores(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_attempts
		 WHERE user_id = $1 AND COALESCE(instructor_score, score) >= 100`,
		userID).Scan(&count)
	return count, err
}

// CountNotes counts the user's study notes.
func (r *AchievementStatsRepository) CountNotes(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notes WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// CountBookmarks counts the user's bookmarks.
func (r *AchievementStatsRepository) CountBookmarks(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// TotalPoints retrieves the user's achievement points total.
func (r *AchievementStatsRepository) TotalPoints(ctx context.Context, userID int) (int, error) {
	var points int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(
		   (SELECT total_points FROM user_points WHERE user_id = $1), 0)`,
		userID).Scan(&points)
	return points, err
}
