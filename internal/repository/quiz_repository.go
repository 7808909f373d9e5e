package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumina-lms/lumina-backend/internal/model"
)

// QuizRepository handles quiz and question data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, module_id, title, description, passing_score, max_attempts, time_limit_minutes, is_published, created_at, updated_at`

// Create inserts a new unpublished quiz.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (module_id, title, description, passing_score, max_attempts, time_limit_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		q.ModuleID, q.Title, q.Description, q.PassingScore, q.MaxAttempts, q.TimeLimitMinutes,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a quiz by its UUID.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id,
	).Scan(&q.ID, &q.ModuleID, &q.Title, &q.Description, &q.PassingScore, &q.MaxAttempts, &q.TimeLimitMinutes, &q.IsPublished, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByModule retrieves a module's quizzes.
func (r *QuizRepository) ListByModule(ctx context.Context, moduleID uuid.UUID) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE module_id = $1 ORDER BY created_at`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		if err := rows.Scan(&q.ID, &q.ModuleID, &q.Title, &q.Description, &q.PassingScore, &q.MaxAttempts, &q.TimeLimitMinutes, &q.IsPublished, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// ListPublished retrieves all published quizzes, used for cache prewarming.
func (r *QuizRepository) ListPublished(ctx context.Context) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE is_published ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		if err := rows.Scan(&q.ID, &q.ModuleID, &q.Title, &q.Description, &q.PassingScore, &q.MaxAttempts, &q.TimeLimitMinutes, &q.IsPublished, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// Update modifies a quiz's settings.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET title = $1, description = $2, passing_score = $3, max_attempts = $4, time_limit_minutes = $5, updated_at = NOW()
		 WHERE id = $6`,
		q.Title, q.Description, q.PassingScore, q.MaxAttempts, q.TimeLimitMinutes, q.ID)
	return err
}

// SetPublished flips a quiz's published flag.
func (r *QuizRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET is_published = $1, updated_at = NOW() WHERE id = $2`, published, id)
	return err
}

// Delete removes a quiz and its questions.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}

// ─── Questions ─────────────────────────────────────────────────────────────

// ListQuestions retrieves a quiz's questions in position order.
func (r *QuizRepository) ListQuestions(ctx context.Context, quizID uuid.UUID) ([]model.QuizQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question_text, question_type, options, correct_answer, points, position
		 FROM quiz_questions
		 WHERE quiz_id = $1
		 ORDER BY position, id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.QuizQuestion
	for rows.Next() {
		var q model.QuizQuestion
		if err := rows.Scan(&q.ID, &q.QuizID, &q.QuestionText, &q.QuestionType, &q.Options, &q.CorrectAnswer, &q.Points, &q.Position); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// AddQuestion inserts one question.
func (r *QuizRepository) AddQuestion(ctx context.Context, q *model.QuizQuestion) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quiz_questions (quiz_id, question_text, question_type, options, correct_answer, points, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		q.QuizID, q.QuestionText, q.QuestionType, q.Options, q.CorrectAnswer, q.Points, q.Position,
	).Scan(&q.ID)
}

// ReplaceQuestions deletes and re-inserts a quiz's question set in one
// transaction.
func (r *QuizRepository) ReplaceQuestions(ctx context.Context, quizID uuid.UUID, questions []model.QuizQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM quiz_questions WHERE quiz_id = $1`, quizID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i := range questions {
		q := &questions[i]
		batch.Queue(
			`INSERT INTO quiz_questions (quiz_id, question_text, question_type, options, correct_answer, points, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			quizID, q.QuestionText, q.QuestionType, q.Options, q.CorrectAnswer, q.Points, q.Position)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetQuestionStats retrieves aggregated per-question difficulty rows.
func (r *QuizRepository) GetQuestionStats(ctx context.Context, quizID uuid.UUID) ([]model.QuestionStat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.question_id, s.times_answered, s.times_correct, s.total_time_seconds
		 FROM question_stats s
		 JOIN quiz_questions q ON s.question_id = q.id
		 WHERE q.quiz_id = $1
		 ORDER BY q.position`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []model.QuestionStat
	for rows.Next() {
		var s model.QuestionStat
		if err := rows.Scan(&s.QuestionID, &s.TimesAnswered, &s.TimesCorrect, &s.TotalTimeSeconds); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
