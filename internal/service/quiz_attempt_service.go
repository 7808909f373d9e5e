package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/config"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/repository"
	"github.com/lumina-lms/lumina-backend/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Common attempt errors.
var (
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrNotEnrolled        = errors.New("user is not enrolled in this course")
	ErrMaxAttemptsReached = errors.New("attempt limit reached for this quiz")
	ErrAttemptNotGradable = errors.New("attempt has not been submitted yet")
)

// QuizAttemptService handles the submit-and-score flow and instructor grade
// overrides.
type QuizAttemptService struct {
	quizRepo       *repository.QuizRepository
	attemptRepo    *repository.QuizAttemptRepository
	enrollmentRepo *repository.EnrollmentRepository
	quizService    *QuizService
	achievements   *AchievementService
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewQuizAttemptService creates a new QuizAttemptService.
func NewQuizAttemptService(
	quizRepo *repository.QuizRepository,
	attemptRepo *repository.QuizAttemptRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	quizService *QuizService,
	achievements *AchievementService,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuizAttemptService {
	return &QuizAttemptService{
		quizRepo:       quizRepo,
		attemptRepo:    attemptRepo,
		enrollmentRepo: enrollmentRepo,
		quizService:    quizService,
		achievements:   achievements,
		rdb:            rdb,
		log:            log.With().Str("component", "quiz_attempt_service").Logger(),
	}
}

// Start checks eligibility and hands out the cached quiz paper. No attempt
// row is created until the student submits.
func (s *QuizAttemptService) Start(ctx context.Context, userID int, quizID uuid.UUID) (*model.QuizPayload, error) {
	quiz, err := s.quizService.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, ErrQuizNotPublished
	}

	if err := s.requireEnrollment(ctx, userID, quiz); err != nil {
		return nil, err
	}
	if err := s.checkAttemptLimit(ctx, userID, quiz); err != nil {
		return nil, err
	}

	return s.quizService.GetPayload(ctx, quizID)
}

// Submit scores the answers server-side, persists the attempt atomically,
// queues per-question stats, and runs the achievement unlock engine.
func (s *QuizAttemptService) Submit(ctx context.Context, userID int, quizID uuid.UUID, req *model.SubmitAttemptRequest) (*model.SubmitAttemptResult, error) {
	quiz, err := s.quizService.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, ErrQuizNotPublished
	}
	if err := s.requireEnrollment(ctx, userID, quiz); err != nil {
		return nil, err
	}
	if err := s.checkAttemptLimit(ctx, userID, quiz); err != nil {
		return nil, err
	}

	questions, err := s.quizRepo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrQuizNoQuestions
	}

	score, answers := scoreSubmission(questions, req.Answers)
	for i := range answers {
		if secs, ok := req.TimeSpent[answers[i].QuestionID.String()]; ok && secs > 0 {
			v := secs
			answers[i].TimeSpentSeconds = &v
		}
	}

	attempt := &model.QuizAttempt{
		QuizID:           quizID,
		UserID:           userID,
		Score:            score,
		Passed:           score >= quiz.PassingScore,
		Status:           model.AttemptStatusSubmitted,
		TimeTakenMinutes: req.TimeTakenMinutes,
	}
	if err := s.attemptRepo.CreateWithAnswers(ctx, attempt, answers); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("user_id", userID).
		Str("quiz_id", quizID.String()).
		Int("attempt_number", attempt.AttemptNumber).
		Float64("score", score).
		Bool("passed", attempt.Passed).
		Msg("Attempt submitted")

	s.queueQuestionStats(ctx, answers)
	unlocked := s.fireAttemptEvents(ctx, userID, quizID, attempt)

	return &model.SubmitAttemptResult{
		Attempt:              attempt,
		Answers:              answers,
		UnlockedAchievements: unlocked,
	}, nil
}

func (s *QuizAttemptService) requireEnrollment(ctx context.Context, userID int, quiz *model.Quiz) error {
	courseID, err := s.quizService.CourseIDForQuiz(ctx, quiz)
	if err != nil {
		return err
	}
	if _, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID); err != nil {
		return ErrNotEnrolled
	}
	return nil
}

// checkAttemptLimit enforces max_attempts. The count is advisory under
// concurrency; the hard cap on numbering comes from the uniqueness
// constraint, so a rare over-admit loses the insert race instead.
func (s *QuizAttemptService) checkAttemptLimit(ctx context.Context, userID int, quiz *model.Quiz) error {
	if quiz.MaxAttempts == nil {
		return nil
	}
	count, err := s.attemptRepo.CountByUserAndQuiz(ctx, userID, quiz.ID)
	if err != nil {
		return err
	}
	if count >= *quiz.MaxAttempts {
		return ErrMaxAttemptsReached
	}
	return nil
}

// queueQuestionStats pushes one delta per answered question onto the worker
// queue. Stats are best-effort; a push failure is logged and dropped.
func (s *QuizAttemptService) queueQuestionStats(ctx context.Context, answers []model.QuizAttemptAnswer) {
	if len(answers) == 0 {
		return
	}
	payloads := make([]interface{}, 0, len(answers))
	for _, a := range answers {
		delta := model.QuestionStatDelta{
			QuestionID: a.QuestionID,
			Correct:    a.IsCorrect,
		}
		if a.TimeSpentSeconds != nil {
			delta.TimeSeconds = *a.TimeSpentSeconds
		}
		data, err := json.Marshal(delta)
		if err != nil {
			continue
		}
		payloads = append(payloads, data)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.QuestionStatsQueue, payloads...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Question stats enqueue failed")
	}
}

// fireAttemptEvents runs the unlock engine for every event the submission
// implies.
func (s *QuizAttemptService) fireAttemptEvents(ctx context.Context, userID int, quizID uuid.UUID, attempt *model.QuizAttempt) []model.UnlockedAchievement {
	score := attempt.Score
	ectx := &model.EventContext{
		QuizID:           &quizID,
		AttemptID:        &attempt.ID,
		Score:            &score,
		Passed:           attempt.Passed,
		TimeTakenMinutes: attempt.TimeTakenMinutes,
	}

	unlocked := s.achievements.CheckAndUnlock(ctx, userID, model.EventQuizCompletion, ectx)
	if score >= 100 {
		unlocked = append(unlocked, s.achievements.CheckAndUnlock(ctx, userID, model.EventPerfectQuiz, ectx)...)
	}
	if attempt.Passed && attempt.TimeTakenMinutes != nil {
		unlocked = append(unlocked, s.achievements.CheckAndUnlock(ctx, userID, model.EventSpeedDemon, ectx)...)
	}
	return unlocked
}

// Grade records an instructor score override. The auto score and the passed
// flag stay untouched so pass/fail remains a function of the published
// passing score.
func (s *QuizAttemptService) Grade(ctx context.Context, attemptID uuid.UUID, claims *Claims, req *model.GradeAttemptRequest) (*model.QuizAttempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, ErrAttemptNotFound
	}
	if attempt.Status == model.AttemptStatusInProgress {
		return nil, ErrAttemptNotGradable
	}

	quiz, err := s.quizService.GetByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if err := s.quizService.requireOwner(ctx, quiz, claims); err != nil {
		return nil, err
	}

	if err := s.attemptRepo.Grade(ctx, attemptID, claims.UserID, *req.Score, req.Feedback); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("attempt_id", attemptID.String()).
		Int("graded_by", claims.UserID).
		Float64("score", *req.Score).
		Msg("Attempt graded")

	return s.attemptRepo.GetByID(ctx, attemptID)
}

// GetAttempt retrieves an attempt with its answers. Students see only their
// own attempts; instructors see attempts at quizzes they own.
func (s *QuizAttemptService) GetAttempt(ctx context.Context, attemptID uuid.UUID, claims *Claims) (*model.QuizAttempt, []model.QuizAttemptAnswer, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, nil, ErrAttemptNotFound
	}

	if attempt.UserID != claims.UserID {
		quiz, err := s.quizService.GetByID(ctx, attempt.QuizID)
		if err != nil {
			return nil, nil, err
		}
		if err := s.quizService.requireOwner(ctx, quiz, claims); err != nil {
			return nil, nil, err
		}
	}

	answers, err := s.attemptRepo.ListAnswers(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	return attempt, answers, nil
}

// ListMyAttempts retrieves the caller's attempts at a quiz, newest first.
func (s *QuizAttemptService) ListMyAttempts(ctx context.Context, userID int, quizID uuid.UUID) ([]model.QuizAttempt, error) {
	return s.attemptRepo.ListByUserAndQuiz(ctx, userID, quizID)
}

// ListQuizAttempts retrieves all attempts at a quiz for instructor review.
func (s *QuizAttemptService) ListQuizAttempts(ctx context.Context, quizID uuid.UUID, claims *Claims, page, perPage int) ([]model.QuizAttempt, *response.Pagination, error) {
	quiz, err := s.quizService.GetByID(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.quizService.requireOwner(ctx, quiz, claims); err != nil {
		return nil, nil, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	attempts, total, err := s.attemptRepo.ListByQuizPaginated(ctx, quizID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return attempts, pagination, nil
}

// ─── Scoring ───────────────────────────────────────────────────────────────

// scoreSubmission grades answers against the canonical question set. Every
// question contributes a snapshot row whether or not it was answered. The
// returned score is 0-100, rounded to two decimals; a quiz whose questions
// carry zero total points scores 0.
func scoreSubmission(questions []model.QuizQuestion, answers map[string]string) (float64, []model.QuizAttemptAnswer) {
	var earned, possible float64
	snapshots := make([]model.QuizAttemptAnswer, 0, len(questions))

	for _, q := range questions {
		submitted := answers[q.ID.String()]
		correct := isAnswerCorrect(q, submitted)

		awarded := 0.0
		if correct {
			awarded = q.Points
		}
		earned += awarded
		possible += q.Points

		snapshots = append(snapshots, model.QuizAttemptAnswer{
			QuestionID:      q.ID,
			QuestionText:    q.QuestionText,
			SubmittedAnswer: submitted,
			IsCorrect:       correct,
			PointsAwarded:   awarded,
			PointsPossible:  q.Points,
		})
	}

	if possible == 0 {
		return 0, snapshots
	}
	return round2(earned / possible * 100), snapshots
}

// isAnswerCorrect applies the per-type comparison rules. Multiple choice is
// an exact match on the option key; true/false is case-insensitive; short
// answers ignore case and surrounding whitespace.
func isAnswerCorrect(q model.QuizQuestion, submitted string) bool {
	if submitted == "" {
		return false
	}
	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice:
		return submitted == q.CorrectAnswer
	case model.QuestionTypeTrueFalse:
		return strings.EqualFold(submitted, q.CorrectAnswer)
	case model.QuestionTypeShortAnswer:
		return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(q.CorrectAnswer))
	default:
		return false
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
