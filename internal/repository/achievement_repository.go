package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumina-lms/lumina-backend/internal/model"
)

// AchievementRepository handles achievement definitions, unlocks, and the
// points aggregate.
type AchievementRepository struct {
	pool *pgxpool.Pool
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(pool *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{pool: pool}
}

const achievementColumns = `id, category, name, description, tier, points, unlock_criteria, is_secret, is_active, created_at`

func collectAchievements(rows pgx.Rows) ([]model.Achievement, error) {
	var achievements []model.Achievement
	for rows.Next() {
		var a model.Achievement
		if err := rows.Scan(&a.ID, &a.Category, &a.Name, &a.Description, &a.Tier, &a.Points, &a.UnlockCriteria, &a.IsSecret, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// ListActiveLocked retrieves active achievements the user has not yet
// unlocked. This is the evaluator's candidate set.
func (r *AchievementRepository) ListActiveLocked(ctx context.Context, userID int) ([]model.Achievement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+achievementColumns+`
		 FROM achievements a
		 WHERE a.is_active
		   AND NOT EXISTS (
		     SELECT 1 FROM user_achievements ua
		     WHERE ua.achievement_id = a.id AND ua.user_id = $1
		   )
		 ORDER BY a.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAchievements(rows)
}

// ListAll retrieves every achievement definition.
func (r *AchievementRepository) ListAll(ctx context.Context) ([]model.Achievement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+achievementColumns+` FROM achievements ORDER BY category, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAchievements(rows)
}

// GetByID retrieves one achievement definition.
func (r *AchievementRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Achievement, error) {
	a := &model.Achievement{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+achievementColumns+` FROM achievements WHERE id = $1`, id,
	).Scan(&a.ID, &a.Category, &a.Name, &a.Description, &a.Tier, &a.Points, &a.UnlockCriteria, &a.IsSecret, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Unlock records an achievement unlock. The composite primary key makes the
// insert idempotent; the return value reports whether this call actually
// created the row, so points are awarded exactly once per (user,
// achievement).
func (r *AchievementRepository) Unlock(ctx context.Context, userID int, achievementID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO user_achievements (user_id, achievement_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		userID, achievementID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListUnlockedByUser retrieves the user's unlocked achievements, newest
// first.
func (r *AchievementRepository) ListUnlockedByUser(ctx context.Context, userID int) ([]model.UnlockedAchievement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.category, a.name, a.description, a.tier, a.points, a.unlock_criteria, a.is_secret, a.is_active, a.created_at, ua.unlocked_at
		 FROM user_achievements ua
		 JOIN achievements a ON ua.achievement_id = a.id
		 WHERE ua.user_id = $1
		 ORDER BY ua.unlocked_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unlocked []model.UnlockedAchievement
	for rows.Next() {
		var u model.UnlockedAchievement
		if err := rows.Scan(&u.ID, &u.Category, &u.Name, &u.Description, &u.Tier, &u.Points, &u.UnlockCriteria, &u.IsSecret, &u.IsActive, &u.CreatedAt, &u.UnlockedAt); err != nil {
			return nil, err
		}
		unlocked = append(unlocked, u)
	}
	return unlocked, rows.Err()
}

// AddPoints increments the user's aggregate row atomically in a single
// statement and returns the resulting totals.
func (r *AchievementRepository) AddPoints(ctx context.Context, userID, points int, tier model.AchievementTier) (*model.UserPoints, error) {
	up := &model.UserPoints{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO user_points (user_id, total_points, bronze_count, silver_count, gold_count, platinum_count)
		 VALUES ($1, $2,
		         ($3 = 'bronze')::int, ($3 = 'silver')::int, ($3 = 'gold')::int, ($3 = 'platinum')::int)
		 ON CONFLICT (user_id) DO UPDATE
		 SET total_points = user_points.total_points + EXCLUDED.total_points,
		     bronze_count = user_points.bronze_count + EXCLUDED.bronze_count,
		     silver_count = user_points.silver_count + EXCLUDED.silver_count,
		     gold_count = user_points.gold_count + EXCLUDED.gold_count,
		     platinum_count = user_points.platinum_count + EXCLUDED.platinum_count
		 RETURNING user_id, total_points, bronze_count, silver_count, gold_count, platinum_count`,
		userID, points, tier,
	).Scan(&up.UserID, &up.TotalPoints, &up.BronzeCount, &up.SilverCount, &up.GoldCount, &up.PlatinumCount)
	if err != nil {
		return nil, err
	}
	return up, nil
}

// GetUserPoints retrieves the user's aggregate; a user with no unlocks gets
// a zero row.
func (r *AchievementRepository) GetUserPoints(ctx context.Context, userID int) (*model.UserPoints, error) {
	up := &model.UserPoints{UserID: userID}
	err := r.pool.QueryRow(ctx,
		`SELECT total_points, bronze_count, silver_count, gold_count, platinum_count
		 FROM user_points WHERE user_id = $1`, userID,
	).Scan(&up.TotalPoints, &up.BronzeCount, &up.SilverCount, &up.GoldCount, &up.PlatinumCount)
	if err == pgx.ErrNoRows {
		return up, nil
	}
	if err != nil {
		return nil, err
	}
	return up, nil
}

// Leaderboard retrieves the top users by total points. Used to rebuild the
// Redis leaderboard and as the fallback when the cache is cold.
func (r *AchievementRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.user_id, u.name, p.total_points
		 FROM user_points p
		 JOIN users u ON p.user_id = u.id
		 ORDER BY p.total_points DESC, p.user_id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	rank := 0
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.TotalPoints); err != nil {
			return nil, err
		}
		rank++
		e.Rank = rank
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Create inserts an achievement definition.
func (r *AchievementRepository) Create(ctx context.Context, a *model.Achievement) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO achievements (category, name, description, tier, points, unlock_criteria, is_secret, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		a.Category, a.Name, a.Description, a.Tier, a.Points, a.UnlockCriteria, a.IsSecret, a.IsActive,
	).Scan(&a.ID, &a.CreatedAt)
}

// Update modifies an achievement definition. Existing unlocks are not
// revisited.
func (r *AchievementRepository) Update(ctx context.Context, a *model.Achievement) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE achievements
		 SET category = $1, name = $2, description = $3, tier = $4, points = $5, unlock_criteria = $6, is_secret = $7, is_active = $8
		 WHERE id = $9`,
		a.Category, a.Name, a.Description, a.Tier, a.Points, a.UnlockCriteria, a.IsSecret, a.IsActive, a.ID)
	return err
}

// Delete removes an achievement definition and its unlock rows.
func (r *AchievementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM achievements WHERE id = $1`, id)
	return err
}
