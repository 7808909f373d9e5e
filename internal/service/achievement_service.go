package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/config"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Common achievement errors.
var (
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrInvalidCriteria     = errors.New("invalid unlock criteria")
)

// AchievementStats answers the aggregate questions the evaluator asks about
// a user's history. Satisfied by AchievementStatsRepository; faked in tests.
type AchievementStats interface {
	CountCompletedLessons(ctx context.Context, userID int) (int, error)
	CountCompletedModules(ctx context.Context, userID int) (int, error)
	CountCompletedCourses(ctx context.Context, userID int, minPercentage float64) (int, error)
	CountAttemptsWithMinScore(ctx context.Context, userID int, minScore float64) (int, error)
	CountQuizzesWithMinScore(ctx context.Context, userID int, minScore float64) (int, error)
	CountPublishedQuizzes(ctx context.Context) (int, error)
	FirstAttemptScore(ctx context.Context, userID int, quizID uuid.UUID) (float64, bool, error)
	CountAttempts(ctx context.Context, userID int) (int, error)
	CountPerfectScores(ctx context.Context, userID int) (int, error)
	CountNotes(ctx context.Context, userID int) (int, error)
	CountBookmarks(ctx context.Context, userID int) (int, error)
	TotalPoints(ctx context.Context, userID int) (int, error)
}

// AchievementService runs the unlock engine and manages definitions, points,
// and the leaderboard.
type AchievementService struct {
	cfg             *config.Config
	achievementRepo *repository.AchievementRepository
	userRepo        *repository.UserRepository
	stats           AchievementStats
	rdb             *redis.Client
	log             zerolog.Logger
}

// NewAchievementService creates a new AchievementService.
func NewAchievementService(
	cfg *config.Config,
	achievementRepo *repository.AchievementRepository,
	userRepo *repository.UserRepository,
	stats AchievementStats,
	rdb *redis.Client,
	log zerolog.Logger,
) *AchievementService {
	return &AchievementService{
		cfg:             cfg,
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
		stats:           stats,
		rdb:             rdb,
		log:             log.With().Str("component", "achievement_service").Logger(),
	}
}

// CheckAndUnlock evaluates every locked active achievement against the event
// and unlocks those whose criteria are satisfied. The engine is advisory: it
// never returns an error, and a failure here must not fail the operation
// that emitted the event. Unlocks that award points trigger one follow-up
// pass for total_points achievements; that pass does not recurse.
func (s *AchievementService) CheckAndUnlock(ctx context.Context, userID int, event model.EventType, ectx *model.EventContext) []model.UnlockedAchievement {
	unlocked := s.runPass(ctx, userID, event, ectx)

	if len(unlocked) > 0 && event != model.EventPointsAwarded {
		followUp := s.runPass(ctx, userID, model.EventPointsAwarded, &model.EventContext{})
		unlocked = append(unlocked, followUp...)
	}
	return unlocked
}

func (s *AchievementService) runPass(ctx context.Context, userID int, event model.EventType, ectx *model.EventContext) []model.UnlockedAchievement {
	candidates, err := s.achievementRepo.ListActiveLocked(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Unlock engine could not load candidates")
		return nil
	}

	var unlocked []model.UnlockedAchievement
	for i := range candidates {
		a := &candidates[i]

		criterion, err := model.ParseCriterion(a.UnlockCriteria)
		if err != nil {
			// Fail closed: a definition the engine does not understand
			// never unlocks.
			s.log.Warn().Err(err).Str("achievement_id", a.ID.String()).Msg("Skipping achievement with unparseable criteria")
			continue
		}
		if !criterion.AppliesTo(event) {
			continue
		}

		satisfied, err := s.evaluate(ctx, userID, criterion, ectx)
		if err != nil {
			s.log.Warn().Err(err).Str("achievement_id", a.ID.String()).Msg("Criteria evaluation failed")
			continue
		}
		if !satisfied {
			continue
		}

		created, err := s.achievementRepo.Unlock(ctx, userID, a.ID)
		if err != nil {
			s.log.Error().Err(err).Str("achievement_id", a.ID.String()).Msg("Unlock insert failed")
			continue
		}
		if !created {
			// Lost the race to a concurrent unlock; the winner awards the
			// points.
			continue
		}

		if _, err := s.achievementRepo.AddPoints(ctx, userID, a.Points, a.Tier); err != nil {
			s.log.Error().Err(err).Str("achievement_id", a.ID.String()).Msg("Points award failed after unlock")
		} else if err := s.rdb.ZIncrBy(ctx, config.CacheKey.LeaderboardKey(), float64(a.Points), strconv.Itoa(userID)).Err(); err != nil {
			s.log.Warn().Err(err).Int("user_id", userID).Msg("Leaderboard increment failed")
		}

		s.log.Info().
			Int("user_id", userID).
			Str("achievement_id", a.ID.String()).
			Str("name", a.Name).
			Msg("Achievement unlocked")

		ua := model.UnlockedAchievement{Achievement: *a, UnlockedAt: time.Now().UTC()}
		unlocked = append(unlocked, ua)
	}
	return unlocked
}

// evaluate decides whether the user's current stats satisfy a criterion.
// Criteria that need event fields (first attempt, speed demon) read them
// from ectx; everything else is answered from aggregates so replayed or
// stale events converge on the same answer.
func (s *AchievementService) evaluate(ctx context.Context, userID int, criterion model.Criterion, ectx *model.EventContext) (bool, error) {
	switch c := criterion.(type) {
	case model.LessonCompletionCriterion:
		n, err := s.stats.CountCompletedLessons(ctx, userID)
		return n >= c.Count, err

	case model.ModuleCompletionCriterion:
		n, err := s.stats.CountCompletedModules(ctx, userID)
		return n >= c.Count, err

	case model.CourseCompletionCriterion:
		n, err := s.stats.CountCompletedCourses(ctx, userID, c.MinPercentage)
		return n >= c.Count, err

	case model.QuizScoreCriterion:
		if c.AllQuizzes {
			// Mastery is per quiz, so repeat attempts collapse here.
			mastered, err := s.stats.CountQuizzesWithMinScore(ctx, userID, c.MinScore)
			if err != nil {
				return false, err
			}
			total, err := s.stats.CountPublishedQuizzes(ctx)
			if err != nil {
				return false, err
			}
			return total > 0 && mastered >= total, nil
		}
		n, err := s.stats.CountAttemptsWithMinScore(ctx, userID, c.MinScore)
		return n >= c.Count, err

	case model.QuizFirstAttemptCriterion:
		if ectx.QuizID == nil {
			return false, nil
		}
		score, ok, err := s.stats.FirstAttemptScore(ctx, userID, *ectx.QuizID)
		if err != nil || !ok {
			return false, err
		}
		return score >= c.MinScore, nil

	case model.QuizAttemptsCriterion:
		n, err := s.stats.CountAttempts(ctx, userID)
		return n >= c.Count, err

	case model.PerfectQuizCriterion:
		n, err := s.stats.CountPerfectScores(ctx, userID)
		return n >= c.Count, err

	case model.SpeedDemonCriterion:
		if !ectx.Passed || ectx.TimeTakenMinutes == nil {
			return false, nil
		}
		t := *ectx.TimeTakenMinutes
		return t > 0 && t < c.MaxMinutes, nil

	case model.NotesCreatedCriterion:
		n, err := s.stats.CountNotes(ctx, userID)
		return n >= c.Count, err

	case model.BookmarksCreatedCriterion:
		n, err := s.stats.CountBookmarks(ctx, userID)
		return n >= c.Count, err

	case model.TotalPointsCriterion:
		n, err := s.stats.TotalPoints(ctx, userID)
		return n >= c.MinPoints, err

	case model.ConsecutiveLoginDaysCriterion:
		// No login-day tracking yet; AppliesTo already gates this off.
		return false, nil

	default:
		return false, fmt.Errorf("unhandled criterion type %q", criterion.Type())
	}
}

// ─── Read surface ──────────────────────────────────────────────────────────

// ListForUser retrieves all achievement definitions with the user's unlock
// state. Secret achievements the user has not unlocked are omitted.
func (s *AchievementService) ListForUser(ctx context.Context, userID int) ([]model.Achievement, []model.UnlockedAchievement, error) {
	all, err := s.achievementRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	unlocked, err := s.achievementRepo.ListUnlockedByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	unlockedIDs := make(map[uuid.UUID]bool, len(unlocked))
	for _, u := range unlocked {
		unlockedIDs[u.ID] = true
	}

	visible := make([]model.Achievement, 0, len(all))
	for _, a := range all {
		if !a.IsActive {
			continue
		}
		if a.IsSecret && !unlockedIDs[a.ID] {
			continue
		}
		visible = append(visible, a)
	}
	return visible, unlocked, nil
}

// GetUserPoints retrieves the user's points aggregate.
func (s *AchievementService) GetUserPoints(ctx context.Context, userID int) (*model.UserPoints, error) {
	return s.achievementRepo.GetUserPoints(ctx, userID)
}

// GetLeaderboard serves the top users by points from the Redis sorted set,
// falling back to Postgres (and rebuilding the set) when the cache is cold.
func (s *AchievementService) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	limit := s.cfg.LeaderboardSize
	key := config.CacheKey.LeaderboardKey()

	members, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("Leaderboard cache read failed")
	}
	if len(members) == 0 {
		entries, err := s.achievementRepo.Leaderboard(ctx, limit)
		if err != nil {
			return nil, err
		}
		if err := s.SyncLeaderboard(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Leaderboard rebuild failed")
		}
		return entries, nil
	}

	entries := make([]model.LeaderboardEntry, 0, len(members))
	for i, m := range members {
		userID, err := strconv.Atoi(fmt.Sprint(m.Member))
		if err != nil {
			continue
		}
		entry := model.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      userID,
			TotalPoints: int(m.Score),
		}
		if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
			entry.Name = user.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SyncLeaderboard rebuilds the Redis sorted set from the points table.
// Called at startup and when the cache goes cold.
func (s *AchievementService) SyncLeaderboard(ctx context.Context) error {
	entries, err := s.achievementRepo.Leaderboard(ctx, s.cfg.LeaderboardSize)
	if err != nil {
		return fmt.Errorf("load leaderboard: %w", err)
	}

	key := config.CacheKey.LeaderboardKey()
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	for _, e := range entries {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(e.TotalPoints), Member: strconv.Itoa(e.UserID)})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild leaderboard: %w", err)
	}
	s.log.Info().Int("entries", len(entries)).Msg("Leaderboard synced")
	return nil
}

// ─── Administration ────────────────────────────────────────────────────────

// Create validates and inserts an achievement definition. The criteria JSON
// must parse into a known criterion type; otherwise the engine could never
// evaluate it.
func (s *AchievementService) Create(ctx context.Context, req *model.CreateAchievementRequest) (*model.Achievement, error) {
	if _, err := model.ParseCriterion(req.UnlockCriteria); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCriteria, err)
	}

	a := &model.Achievement{
		Category:       req.Category,
		Name:           req.Name,
		Description:    req.Description,
		Tier:           model.AchievementTier(req.Tier),
		Points:         req.Points,
		UnlockCriteria: req.UnlockCriteria,
		IsSecret:       req.IsSecret,
		IsActive:       true,
	}
	if err := s.achievementRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Str("achievement_id", a.ID.String()).Str("name", a.Name).Msg("Achievement created")
	return a, nil
}

// Update modifies an achievement definition. Changing criteria affects
// future evaluations only; existing unlocks are never revoked.
func (s *AchievementService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAchievementRequest) (*model.Achievement, error) {
	a, err := s.achievementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrAchievementNotFound
	}

	if req.Category != "" {
		a.Category = req.Category
	}
	if req.Name != "" {
		a.Name = req.Name
	}
	if req.Description != "" {
		a.Description = req.Description
	}
	if req.Tier != "" {
		a.Tier = model.AchievementTier(req.Tier)
	}
	if req.Points != nil {
		a.Points = *req.Points
	}
	if req.UnlockCriteria != nil {
		if _, err := model.ParseCriterion(req.UnlockCriteria); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCriteria, err)
		}
		a.UnlockCriteria = req.UnlockCriteria
	}
	if req.IsSecret != nil {
		a.IsSecret = *req.IsSecret
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	if err := s.achievementRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an achievement definition and its unlock rows. Points
// already awarded are kept.
func (s *AchievementService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.achievementRepo.GetByID(ctx, id); err != nil {
		return ErrAchievementNotFound
	}
	return s.achievementRepo.Delete(ctx, id)
}

// ListAll retrieves every definition, for the admin surface.
func (s *AchievementService) ListAll(ctx context.Context) ([]model.Achievement, error) {
	return s.achievementRepo.ListAll(ctx)
}
