package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lumina-lms/lumina-backend/internal/config"
	"github.com/lumina-lms/lumina-backend/internal/database"
	"github.com/lumina-lms/lumina-backend/internal/logger"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/repository"
)

// seed is one starter achievement definition.
type seed struct {
	category    string
	name        string
	description string
	tier        model.AchievementTier
	points      int
	criteria    string
	secret      bool
}

var seeds = []seed{
	{"learning", "First Steps", "Complete your first lesson", model.TierBronze, 10,
		`{"type":"lesson_completion","count":1}`, false},
	{"learning", "Getting Into It", "Complete 10 lessons", model.TierBronze, 25,
		`{"type":"lesson_completion","count":10}`, false},
	{"learning", "Dedicated Learner", "Complete 50 lessons", model.TierSilver, 75,
		`{"type":"lesson_completion","count":50}`, false},
	{"learning", "Module Master", "Complete 5 modules", model.TierSilver, 50,
		`{"type":"module_completion","count":5}`, false},
	{"learning", "Course Conqueror", "Finish your first course", model.TierGold, 100,
		`{"type":"course_completion","min_percentage":100,"count":1}`, false},
	{"learning", "Serial Finisher", "Finish 5 courses", model.TierPlatinum, 300,
		`{"type":"course_completion","min_percentage":100,"count":5}`, false},
	{"quizzes", "Quiz Rookie", "Submit your first quiz attempt", model.TierBronze, 10,
		`{"type":"quiz_attempts","count":1}`, false},
	{"quizzes", "High Scorer", "Score 90 or above on 5 quiz attempts", model.TierSilver, 60,
		`{"type":"quiz_score","min_score":90,"count":5}`, false},
	{"quizzes", "Ace", "Get a perfect score on a quiz", model.TierGold, 80,
		`{"type":"perfect_quiz","count":1}`, false},
	{"quizzes", "Natural", "Pass a quiz with 90+ on your very first try", model.TierGold, 90,
		`{"type":"quiz_first_attempt","min_score":90}`, true},
	{"quizzes", "Speed Demon", "Pass a quiz in under 5 minutes", model.TierGold, 90,
		`{"type":"speed_demon","max_minutes":5}`, true},
	{"study", "Note Taker", "Write 10 lesson notes", model.TierBronze, 20,
		`{"type":"notes_created","count":10}`, false},
	{"study", "Curator", "Bookmark 10 lessons", model.TierBronze, 20,
		`{"type":"bookmarks_created","count":10}`, false},
	{"meta", "Point Collector", "Earn 500 achievement points", model.TierPlatinum, 200,
		`{"type":"total_points","min_points":500}`, false},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	achievementRepo := repository.NewAchievementRepository(pool)

	fmt.Printf("=== Seeding %d Achievements ===\n", len(seeds))

	created := 0
	for _, s := range seeds {
		// Skip definitions that already exist so re-running is safe.
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM achievements WHERE name = $1)`, s.name).Scan(&exists)
		if err != nil {
			log.Fatal().Err(err).Str("name", s.name).Msg("Lookup failed")
		}
		if exists {
			fmt.Printf("  skip   %s\n", s.name)
			continue
		}

		criteria := json.RawMessage(s.criteria)
		if _, err := model.ParseCriterion(criteria); err != nil {
			log.Fatal().Err(err).Str("name", s.name).Msg("Seed criteria do not parse")
		}

		a := &model.Achievement{
			Category:       s.category,
			Name:           s.name,
			Description:    s.description,
			Tier:           s.tier,
			Points:         s.points,
			UnlockCriteria: criteria,
			IsSecret:       s.secret,
			IsActive:       true,
		}
		if err := achievementRepo.Create(ctx, a); err != nil {
			log.Fatal().Err(err).Str("name", s.name).Msg("Insert failed")
		}
		fmt.Printf("  create %s (%s, %d pts)\n", s.name, s.tier, s.points)
		created++
	}

	fmt.Printf("\nDone. %d created, %d skipped.\n", created, len(seeds)-created)
}
