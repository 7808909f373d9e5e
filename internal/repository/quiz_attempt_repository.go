package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumina-lms/lumina-backend/internal/model"
)

// maxNumberingRetries bounds the retry loop that resolves attempt-number
// collisions between concurrent submissions for the same (user, quiz).
const maxNumberingRetries = 3

// ErrAttemptNumberContention is returned when attempt numbering could not be
// serialized within the retry budget.
var ErrAttemptNumberContention = errors.New("attempt numbering contention, retry submission")

// QuizAttemptRepository handles quiz attempt and answer data access.
type QuizAttemptRepository struct {
	pool *pgxpool.Pool
}

// NewQuizAttemptRepository creates a new QuizAttemptRepository.
func NewQuizAttemptRepository(pool *pgxpool.Pool) *QuizAttemptRepository {
	return &QuizAttemptRepository{pool: pool}
}

const attemptColumns = `id, quiz_id, user_id, attempt_number, score, instructor_score, passed, status, time_taken_minutes, feedback, graded_by, graded_at, started_at, submitted_at`

func scanAttempt(row pgx.Row) (*model.QuizAttempt, error) {
	a := &model.QuizAttempt{}
	err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.AttemptNumber, &a.Score, &a.InstructorScore, &a.Passed, &a.Status, &a.TimeTakenMinutes, &a.Feedback, &a.GradedBy, &a.GradedAt, &a.StartedAt, &a.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateWithAnswers persists a submitted attempt and its per-question answer
// snapshots atomically. The attempt number is assigned inside the
// transaction as MAX(attempt_number)+1; the UNIQUE
// (user_id, quiz_id, attempt_number) constraint catches the window between
// read and insert, and the insert is retried with a fresh number. Numbers
// therefore form the gap-free sequence 1, 2, 3, ... per (user, quiz).
func (r *QuizAttemptRepository) CreateWithAnswers(ctx context.Context, a *model.QuizAttempt, answers []model.QuizAttemptAnswer) error {
	for range maxNumberingRetries {
		err := r.tryCreate(ctx, a, answers)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
	}
	return ErrAttemptNumberContention
}

func (r *QuizAttemptRepository) tryCreate(ctx context.Context, a *model.QuizAttempt, answers []model.QuizAttemptAnswer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(attempt_number), 0) + 1
		 FROM quiz_attempts
		 WHERE user_id = $1 AND quiz_id = $2`,
		a.UserID, a.QuizID,
	).Scan(&a.AttemptNumber); err != nil {
		return fmt.Errorf("next attempt number: %w", err)
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO quiz_attempts
		   (quiz_id, user_id, attempt_number, score, passed, status, time_taken_minutes, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 RETURNING id, started_at, submitted_at`,
		a.QuizID, a.UserID, a.AttemptNumber, a.Score, a.Passed, a.Status, a.TimeTakenMinutes,
	).Scan(&a.ID, &a.StartedAt, &a.SubmittedAt); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range answers {
		ans := &answers[i]
		ans.AttemptID = a.ID
		batch.Queue(
			`INSERT INTO quiz_attempt_answers
			   (attempt_id, question_id, question_text, submitted_answer, is_correct, points_awarded, points_possible, time_spent_seconds)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			ans.AttemptID, ans.QuestionID, ans.QuestionText, ans.SubmittedAnswer, ans.IsCorrect, ans.PointsAwarded, ans.PointsPossible, ans.TimeSpentSeconds)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert answers: %w", err)
	}

	return tx.Commit(ctx)
}

// isUniqueViolation reports whether err is a PostgreSQL 23505 error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetByID retrieves an attempt.
func (r *QuizAttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuizAttempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts WHERE id = $1`, id))
}

// CountByUserAndQuiz returns how many attempts the user has made.
func (r *QuizAttemptRepository) CountByUserAndQuiz(ctx context.Context, userID int, quizID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1 AND quiz_id = $2`,
		userID, quizID,
	).Scan(&count)
	return count, err
}

// ListByUserAndQuiz retrieves the user's attempts, newest first.
func (r *QuizAttemptRepository) ListByUserAndQuiz(ctx context.Context, userID int, quizID uuid.UUID) ([]model.QuizAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM quiz_attempts
		 WHERE user_id = $1 AND quiz_id = $2
		 ORDER BY attempt_number DESC`, userID, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// ListByQuizPaginated retrieves all attempts at a quiz for instructor review.
func (r *QuizAttemptRepository) ListByQuizPaginated(ctx context.Context, quizID uuid.UUID, limit, offset int) ([]model.QuizAttempt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_attempts WHERE quiz_id = $1`, quizID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM quiz_attempts
		 WHERE quiz_id = $1
		 ORDER BY submitted_at DESC NULLS LAST
		 LIMIT $2 OFFSET $3`, quizID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	attempts, err := collectAttempts(rows)
	return attempts, total, err
}

func collectAttempts(rows pgx.Rows) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	for rows.Next() {
		var a model.QuizAttempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.AttemptNumber, &a.Score, &a.InstructorScore, &a.Passed, &a.Status, &a.TimeTakenMinutes, &a.Feedback, &a.GradedBy, &a.GradedAt, &a.StartedAt, &a.SubmittedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Grade applies an instructor override. The auto score and passed flag are
// left untouched.
func (r *QuizAttemptRepository) Grade(ctx context.Context, attemptID uuid.UUID, graderID int, score float64, feedback string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quiz_attempts
		 SET instructor_score = $1, feedback = $2, graded_by = $3, graded_at = NOW(), status = $4
		 WHERE id = $5`,
		score, feedback, graderID, model.AttemptStatusGraded, attemptID)
	return err
}

// ListAnswers retrieves the per-question snapshots for an attempt.
func (r *QuizAttemptRepository) ListAnswers(ctx context.Context, attemptID uuid.UUID) ([]model.QuizAttemptAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id, question_id, question_text, submitted_answer, is_correct, points_awarded, points_possible, time_spent_seconds
		 FROM quiz_attempt_answers
		 WHERE attempt_id = $1
		 ORDER BY id`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.QuizAttemptAnswer
	for rows.Next() {
		var ans model.QuizAttemptAnswer
		if err := rows.Scan(&ans.ID, &ans.AttemptID, &ans.QuestionID, &ans.QuestionText, &ans.SubmittedAnswer, &ans.IsCorrect, &ans.PointsAwarded, &ans.PointsPossible, &ans.TimeSpentSeconds); err != nil {
			return nil, err
		}
		answers = append(answers, ans)
	}
	return answers, rows.Err()
}
