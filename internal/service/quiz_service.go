package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/config"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Common quiz errors.
var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotPublished = errors.New("quiz is not published")
	ErrQuizNoQuestions  = errors.New("quiz has no questions, cannot publish")
)

// QuizService handles quiz authoring and the published-payload cache.
// Published quizzes are served to students from Redis; the cached payload
// strips correct answers so it can be handed out as-is.
type QuizService struct {
	quizRepo   *repository.QuizRepository
	courseRepo *repository.CourseRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	quizRepo *repository.QuizRepository,
	courseRepo *repository.CourseRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizRepo:   quizRepo,
		courseRepo: courseRepo,
		rdb:        rdb,
		log:        log.With().Str("component", "quiz_service").Logger(),
	}
}

// GetByID retrieves a quiz.
func (s *QuizService) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

// CourseIDForQuiz resolves the course a quiz belongs to, for ownership and
// enrollment checks.
func (s *QuizService) CourseIDForQuiz(ctx context.Context, quiz *model.Quiz) (uuid.UUID, error) {
	module, err := s.courseRepo.GetModuleByID(ctx, quiz.ModuleID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve quiz module: %w", err)
	}
	return module.CourseID, nil
}

// requireOwner checks that the claims belong to the instructor of the course
// that contains the quiz. Admins pass for any quiz.
func (s *QuizService) requireOwner(ctx context.Context, quiz *model.Quiz, claims *Claims) error {
	if claims.Role == model.RoleAdmin {
		return nil
	}
	courseID, err := s.CourseIDForQuiz(ctx, quiz)
	if err != nil {
		return err
	}
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return ErrCourseNotFound
	}
	if course.InstructorID != claims.UserID {
		return ErrNotCourseOwner
	}
	return nil
}

// Create inserts an unpublished quiz under a module.
func (s *QuizService) Create(ctx context.Context, moduleID uuid.UUID, claims *Claims, req *model.CreateQuizRequest) (*model.Quiz, error) {
	module, err := s.courseRepo.GetModuleByID(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("resolve module: %w", err)
	}
	course, err := s.courseRepo.GetByID(ctx, module.CourseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	if claims.Role != model.RoleAdmin && course.InstructorID != claims.UserID {
		return nil, ErrNotCourseOwner
	}

	quiz := &model.Quiz{
		ModuleID:         moduleID,
		Title:            req.Title,
		Description:      req.Description,
		PassingScore:     req.PassingScore,
		MaxAttempts:      req.MaxAttempts,
		TimeLimitMinutes: req.TimeLimitMinutes,
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Update modifies a quiz's settings and refreshes its cached payload if
// published.
func (s *QuizService) Update(ctx context.Context, quizID uuid.UUID, claims *Claims, req *model.CreateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, quiz, claims); err != nil {
		return nil, err
	}

	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.PassingScore = req.PassingScore
	quiz.MaxAttempts = req.MaxAttempts
	quiz.TimeLimitMinutes = req.TimeLimitMinutes
	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, err
	}

	if quiz.IsPublished {
		if err := s.WarmCache(ctx, quiz); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Cache refresh failed after update")
		}
	}
	return quiz, nil
}

// AddQuestion appends a question to a quiz.
func (s *QuizService) AddQuestion(ctx context.Context, quizID uuid.UUID, claims *Claims, req *model.AddQuestionRequest) (*model.QuizQuestion, error) {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, quiz, claims); err != nil {
		return nil, err
	}

	question := &model.QuizQuestion{
		QuizID:        quizID,
		QuestionText:  req.QuestionText,
		QuestionType:  model.QuestionType(req.QuestionType),
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Position:      req.Position,
	}
	if err := s.quizRepo.AddQuestion(ctx, question); err != nil {
		return nil, err
	}

	if quiz.IsPublished {
		if err := s.WarmCache(ctx, quiz); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Cache refresh failed after question add")
		}
	}
	return question, nil
}

// ReplaceQuestions swaps out a quiz's whole question set.
func (s *QuizService) ReplaceQuestions(ctx context.Context, quizID uuid.UUID, claims *Claims, req *model.ReplaceQuestionsRequest) error {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, quiz, claims); err != nil {
		return err
	}

	questions := make([]model.QuizQuestion, 0, len(req.Questions))
	for i, q := range req.Questions {
		questions = append(questions, model.QuizQuestion{
			QuizID:        quizID,
			QuestionText:  q.QuestionText,
			QuestionType:  model.QuestionType(q.QuestionType),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			Position:      i + 1,
		})
	}
	if err := s.quizRepo.ReplaceQuestions(ctx, quizID, questions); err != nil {
		return err
	}

	if quiz.IsPublished {
		if err := s.WarmCache(ctx, quiz); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Cache refresh failed after question replace")
		}
	}
	return nil
}

// ListQuestions retrieves a quiz's questions with answers, for the authoring
// surface.
func (s *QuizService) ListQuestions(ctx context.Context, quizID uuid.UUID, claims *Claims) ([]model.QuizQuestion, error) {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, quiz, claims); err != nil {
		return nil, err
	}
	return s.quizRepo.ListQuestions(ctx, quizID)
}

// Publish makes a quiz available to students and warms its payload cache.
// A quiz without questions cannot be published.
func (s *QuizService) Publish(ctx context.Context, quizID uuid.UUID, claims *Claims) (*model.Quiz, error) {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, quiz, claims); err != nil {
		return nil, err
	}

	questions, err := s.quizRepo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrQuizNoQuestions
	}

	if err := s.quizRepo.SetPublished(ctx, quizID, true); err != nil {
		return nil, err
	}
	quiz.IsPublished = true

	if err := s.WarmCache(ctx, quiz); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Cache warm failed after publish")
	}
	s.log.Info().Str("quiz_id", quizID.String()).Msg("Quiz published")
	return quiz, nil
}

// Unpublish hides a quiz and drops its cached payload.
func (s *QuizService) Unpublish(ctx context.Context, quizID uuid.UUID, claims *Claims) error {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, quiz, claims); err != nil {
		return err
	}

	if err := s.quizRepo.SetPublished(ctx, quizID, false); err != nil {
		return err
	}
	return s.rdb.Del(ctx, config.CacheKey.QuizPayloadKey(quizID.String())).Err()
}

// Delete removes a quiz, its questions, and its cached payload.
func (s *QuizService) Delete(ctx context.Context, quizID uuid.UUID, claims *Claims) error {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, quiz, claims); err != nil {
		return err
	}

	if err := s.quizRepo.Delete(ctx, quizID); err != nil {
		return err
	}
	return s.rdb.Del(ctx, config.CacheKey.QuizPayloadKey(quizID.String())).Err()
}

// ListByModule retrieves a module's quizzes.
func (s *QuizService) ListByModule(ctx context.Context, moduleID uuid.UUID) ([]model.Quiz, error) {
	return s.quizRepo.ListByModule(ctx, moduleID)
}

// GetQuestionStats retrieves aggregated per-question difficulty data for the
// instructor dashboard.
func (s *QuizService) GetQuestionStats(ctx context.Context, quizID uuid.UUID, claims *Claims) ([]model.QuestionStat, error) {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, quiz, claims); err != nil {
		return nil, err
	}
	return s.quizRepo.GetQuestionStats(ctx, quizID)
}

// ─── Payload cache ─────────────────────────────────────────────────────────

// WarmCache builds the student-facing payload and stores it in Redis. The
// payload never contains correct answers.
func (s *QuizService) WarmCache(ctx context.Context, quiz *model.Quiz) error {
	questions, err := s.quizRepo.ListQuestions(ctx, quiz.ID)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	payload := buildPayload(quiz, questions)
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	key := config.CacheKey.QuizPayloadKey(quiz.ID.String())
	if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("store payload: %w", err)
	}
	return nil
}

// GetPayload serves the student-facing quiz payload, reading through to the
// database on a cache miss.
func (s *QuizService) GetPayload(ctx context.Context, quizID uuid.UUID) (*model.QuizPayload, error) {
	key := config.CacheKey.QuizPayloadKey(quizID.String())

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		payload := &model.QuizPayload{}
		if jsonErr := json.Unmarshal(data, payload); jsonErr == nil {
			return payload, nil
		}
		// Corrupt cache entry, fall through and rebuild.
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Payload cache read failed")
	}

	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, ErrQuizNotPublished
	}

	if err := s.WarmCache(ctx, quiz); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Cache warm failed on read")
	}

	questions, err := s.quizRepo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return buildPayload(quiz, questions), nil
}

// Prewarm loads every published quiz into the payload cache. Called once at
// startup.
func (s *QuizService) Prewarm(ctx context.Context) error {
	quizzes, err := s.quizRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published quizzes: %w", err)
	}
	if len(quizzes) == 0 {
		s.log.Info().Msg("No published quizzes to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(quizzes)).Msg("Prewarming published quizzes...")
	warmed := 0
	for i := range quizzes {
		if err := s.WarmCache(ctx, &quizzes[i]); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", quizzes[i].ID.String()).Msg("Prewarm failed for quiz")
			continue
		}
		warmed++
	}
	s.log.Info().Int("warmed", warmed).Msg("Quiz payload prewarm complete")
	return nil
}

func buildPayload(quiz *model.Quiz, questions []model.QuizQuestion) *model.QuizPayload {
	forStudent := make([]model.QuestionForStudent, 0, len(questions))
	for _, q := range questions {
		forStudent = append(forStudent, model.QuestionForStudent{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Options:      q.Options,
			Points:       q.Points,
			Position:     q.Position,
		})
	}
	return &model.QuizPayload{
		QuizID:           quiz.ID,
		Title:            quiz.Title,
		PassingScore:     quiz.PassingScore,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		Questions:        forStudent,
	}
}
