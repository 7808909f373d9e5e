package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumina-lms/lumina-backend/internal/config"
	"github.com/lumina-lms/lumina-backend/internal/database"
	"github.com/lumina-lms/lumina-backend/internal/handler"
	"github.com/lumina-lms/lumina-backend/internal/logger"
	"github.com/lumina-lms/lumina-backend/internal/repository"
	"github.com/lumina-lms/lumina-backend/internal/router"
	"github.com/lumina-lms/lumina-backend/internal/service"
	"github.com/lumina-lms/lumina-backend/internal/validator"
	"github.com/lumina-lms/lumina-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Lumina Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	attemptRepo := repository.NewQuizAttemptRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	progressRepo := repository.NewLessonProgressRepository(pool)
	achievementRepo := repository.NewAchievementRepository(pool)
	statsRepo := repository.NewAchievementStatsRepository(pool)
	certRepo := repository.NewCertificateRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	bookmarkRepo := repository.NewBookmarkRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, userRepo, log)
	userService := service.NewUserService(userRepo, log)
	courseService := service.NewCourseService(courseRepo, log)
	quizService := service.NewQuizService(quizRepo, courseRepo, rdb, log)
	achievementService := service.NewAchievementService(cfg, achievementRepo, userRepo, statsRepo, rdb, log)
	certificateService := service.NewCertificateService(certRepo, enrollmentRepo, courseRepo, userRepo, log)
	progressService := service.NewProgressService(courseRepo, enrollmentRepo, progressRepo, certificateService, achievementService, log)
	attemptService := service.NewQuizAttemptService(quizRepo, attemptRepo, enrollmentRepo, quizService, achievementService, rdb, log)
	studyService := service.NewStudyService(noteRepo, bookmarkRepo, courseRepo, achievementService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService, userService),
		User:        handler.NewUserHandler(userService, authService),
		Course:      handler.NewCourseHandler(courseService, quizService),
		Enrollment:  handler.NewEnrollmentHandler(progressService),
		Study:       handler.NewStudyHandler(progressService, studyService),
		Quiz:        handler.NewQuizHandler(quizService),
		Attempt:     handler.NewAttemptHandler(attemptService),
		Achievement: handler.NewAchievementHandler(achievementService),
		Certificate: handler.NewCertificateHandler(certificateService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	statsWorker := worker.NewQuestionStatsWorker(pool, rdb, log)
	go statsWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load all published quizzes into Redis BEFORE accepting traffic.
	// This avoids race conditions from lazy loading under thundering herd.
	if err := quizService.Prewarm(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}
	if err := achievementService.SyncLeaderboard(ctx); err != nil {
		log.Warn().Err(err).Msg("Leaderboard sync failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the stats worker and wait for its queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
