package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lumina-lms/lumina-backend/internal/config"
	"github.com/lumina-lms/lumina-backend/internal/handler"
	"github.com/lumina-lms/lumina-backend/internal/middleware"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/response"
	"github.com/lumina-lms/lumina-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Course      *handler.CourseHandler
	Enrollment  *handler.EnrollmentHandler
	Study       *handler.StudyHandler
	Quiz        *handler.QuizHandler
	Attempt     *handler.AttemptHandler
	Achievement *handler.AchievementHandler
	Certificate *handler.CertificateHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Public Group (No Auth) ─────────────────────────────────────
	// Catalog browsing and certificate verification, cached briefly.
	public := router.Group("/api/v1")
	public.Use(middleware.CacheControl(60))
	{
		public.GET("/courses", handlers.Course.ListCatalog)
		public.GET("/courses/:course_id", handlers.Course.GetCourse)
		public.GET("/courses/:course_id/projects", handlers.Course.ListProjects)
		public.GET("/modules/:module_id/lessons", handlers.Course.ListModuleLessons)
		public.GET("/leaderboard", handlers.Achievement.GetLeaderboard)
		public.GET("/certificates/verify/:number", handlers.Certificate.VerifyCertificate)
	}

	// ─── 3. Authenticated Group (JWT + Session) ────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		api.PATCH("/users/me", handlers.User.UpdateProfile)

		// Enrollment and progress
		api.POST("/courses/:course_id/enroll", handlers.Enrollment.Enroll)
		api.DELETE("/courses/:course_id/enroll", handlers.Enrollment.Unenroll)
		api.GET("/enrollments", handlers.Enrollment.ListMyEnrollments)
		api.GET("/courses/:course_id/progress", handlers.Enrollment.GetCourseProgress)
		api.GET("/courses/:course_id/certificate", handlers.Certificate.GetCourseCertificate)
		api.POST("/courses/:course_id/certificate", handlers.Certificate.RequestCertificate)

		// Lesson content and study tools
		api.GET("/lessons/:lesson_id", handlers.Course.GetLesson)
		api.POST("/lessons/:lesson_id/complete", handlers.Study.CompleteLesson)
		api.POST("/lessons/:lesson_id/notes", handlers.Study.CreateNote)
		api.GET("/lessons/:lesson_id/notes", handlers.Study.ListNotes)
		api.PATCH("/notes/:note_id", handlers.Study.UpdateNote)
		api.DELETE("/notes/:note_id", handlers.Study.DeleteNote)
		api.PUT("/lessons/:lesson_id/bookmark", handlers.Study.AddBookmark)
		api.DELETE("/lessons/:lesson_id/bookmark", handlers.Study.RemoveBookmark)
		api.GET("/bookmarks", handlers.Study.ListBookmarks)

		// Quiz taking
		api.POST("/quizzes/:quiz_id/attempts", handlers.Attempt.StartAttempt)
		api.POST("/quizzes/:quiz_id/attempts/submit", handlers.Attempt.SubmitAttempt)
		api.GET("/quizzes/:quiz_id/attempts", handlers.Attempt.ListMyAttempts)
		api.GET("/attempts/:attempt_id", handlers.Attempt.GetAttempt)

		// Achievements and certificates
		api.GET("/achievements", handlers.Achievement.ListMyAchievements)
		api.GET("/achievements/points", handlers.Achievement.GetMyPoints)
		api.GET("/certificates", handlers.Certificate.ListMyCertificates)
	}

	// ─── 4. Instructor Group (JWT + RBAC) ──────────────────────────────
	instructor := router.Group("/api/v1")
	instructor.Use(
		middleware.RequireAuth(authService),
		middleware.RequireRole(model.RoleInstructor, model.RoleAdmin),
	)
	{
		instructor.POST("/instructor/courses", handlers.Course.CreateCourse)
		instructor.GET("/instructor/courses", handlers.Course.ListMyCourses)
		instructor.PATCH("/instructor/courses/:course_id", handlers.Course.UpdateCourse)
		instructor.POST("/instructor/courses/:course_id/publish", handlers.Course.PublishCourse)
		instructor.POST("/instructor/courses/:course_id/archive", handlers.Course.ArchiveCourse)
		instructor.DELETE("/instructor/courses/:course_id", handlers.Course.DeleteCourse)

		instructor.GET("/instructor/courses/:course_id/enrollments", handlers.Enrollment.GetCourseEnrollmentCount)
		instructor.POST("/instructor/courses/:course_id/modules", handlers.Course.AddModule)
		instructor.DELETE("/instructor/courses/:course_id/modules/:module_id", handlers.Course.DeleteModule)
		instructor.POST("/instructor/courses/:course_id/modules/:module_id/lessons", handlers.Course.AddLesson)
		instructor.PATCH("/instructor/courses/:course_id/lessons/:lesson_id", handlers.Course.UpdateLesson)
		instructor.DELETE("/instructor/courses/:course_id/lessons/:lesson_id", handlers.Course.DeleteLesson)
		instructor.POST("/instructor/courses/:course_id/projects", handlers.Course.AddProject)
		instructor.DELETE("/instructor/courses/:course_id/projects/:project_id", handlers.Course.DeleteProject)

		// Quiz authoring
		instructor.POST("/modules/:module_id/quizzes", handlers.Quiz.CreateQuiz)
		instructor.PUT("/quizzes/:quiz_id", handlers.Quiz.UpdateQuiz)
		instructor.DELETE("/quizzes/:quiz_id", handlers.Quiz.DeleteQuiz)
		instructor.POST("/quizzes/:quiz_id/publish", handlers.Quiz.PublishQuiz)
		instructor.POST("/quizzes/:quiz_id/unpublish", handlers.Quiz.UnpublishQuiz)
		instructor.POST("/quizzes/:quiz_id/questions", handlers.Quiz.AddQuestion)
		instructor.PUT("/quizzes/:quiz_id/questions", handlers.Quiz.ReplaceQuestions)
		instructor.GET("/quizzes/:quiz_id/questions", handlers.Quiz.ListQuestions)
		instructor.GET("/quizzes/:quiz_id/stats", handlers.Quiz.GetQuestionStats)

		// Grading
		instructor.GET("/quizzes/:quiz_id/attempts/all", handlers.Attempt.ListQuizAttempts)
		instructor.POST("/attempts/:attempt_id/grade", handlers.Attempt.GradeAttempt)
	}

	// ─── 5. Admin Group (JWT + RBAC) ───────────────────────────────────
	admin := router.Group("/api/v1/admin")
	admin.Use(
		middleware.RequireAuth(authService),
		middleware.RequireRole(model.RoleAdmin),
	)
	{
		admin.GET("/users", handlers.User.ListUsers)
		admin.POST("/users", handlers.User.CreateUser)
		admin.PATCH("/users/:user_id", handlers.User.UpdateUser)
		admin.DELETE("/users/:user_id", handlers.User.DeleteUser)

		admin.GET("/achievements", handlers.Achievement.ListAllAchievements)
		admin.POST("/achievements", handlers.Achievement.CreateAchievement)
		admin.PATCH("/achievements/:achievement_id", handlers.Achievement.UpdateAchievement)
		admin.DELETE("/achievements/:achievement_id", handlers.Achievement.DeleteAchievement)
	}

	return router
}
