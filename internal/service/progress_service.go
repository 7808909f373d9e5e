package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrLessonNotFound is returned when a lesson lookup misses or the lesson is
// not published.
var ErrLessonNotFound = errors.New("lesson not found")

// ProgressService handles enrollment, lesson completion, and the derived
// completion percentage. Completion crossing 100 is the only trigger for
// certificate issuance.
type ProgressService struct {
	courseRepo     *repository.CourseRepository
	enrollmentRepo *repository.EnrollmentRepository
	progressRepo   *repository.LessonProgressRepository
	certificates   *CertificateService
	achievements   *AchievementService
	log            zerolog.Logger
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.LessonProgressRepository,
	certificates *CertificateService,
	achievements *AchievementService,
	log zerolog.Logger,
) *ProgressService {
	return &ProgressService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		certificates:   certificates,
		achievements:   achievements,
		log:            log.With().Str("component", "progress_service").Logger(),
	}
}

// Enroll enrolls a user in a published course. Re-enrolling returns the
// existing enrollment unchanged.
func (s *ProgressService) Enroll(ctx context.Context, userID int, courseID uuid.UUID) (*model.Enrollment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	if course.Status != model.CourseStatusPublished {
		return nil, ErrCourseNotPublished
	}
	return s.enrollmentRepo.Create(ctx, userID, courseID)
}

// Unenroll marks the enrollment inactive. Progress rows and any issued
// certificate are kept; re-enrolling later picks up where the user left off.
func (s *ProgressService) Unenroll(ctx context.Context, userID int, courseID uuid.UUID) error {
	if _, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID); err != nil {
		return ErrNotEnrolled
	}
	return s.enrollmentRepo.SetStatus(ctx, userID, courseID, model.EnrollmentStatusInactive)
}

// CourseEnrollmentCount reports how many students have enrolled in a
// course. Restricted to the owning instructor and admins.
func (s *ProgressService) CourseEnrollmentCount(ctx context.Context, courseID uuid.UUID, claims *Claims) (int, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return 0, ErrCourseNotFound
	}
	if claims.Role != model.RoleAdmin && course.InstructorID != claims.UserID {
		return 0, ErrNotCourseOwner
	}
	return s.enrollmentRepo.CountByCourse(ctx, courseID)
}

// ListEnrollments retrieves the caller's enrollments.
func (s *ProgressService) ListEnrollments(ctx context.Context, userID int) ([]model.Enrollment, error) {
	return s.enrollmentRepo.ListByUser(ctx, userID)
}

// GetCourseProgress retrieves the enrollment and per-lesson detail.
func (s *ProgressService) GetCourseProgress(ctx context.Context, userID int, courseID uuid.UUID) (*model.CourseProgress, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, ErrNotEnrolled
	}
	lessons, err := s.progressRepo.ListByCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return &model.CourseProgress{Enrollment: enrollment, Lessons: lessons}, nil
}

// CompleteLesson marks a lesson complete, recomputes the completion
// percentage, and fires the downstream events. Completing an already
// completed lesson accumulates time spent but changes nothing else, so the
// operation is safe to replay.
func (s *ProgressService) CompleteLesson(ctx context.Context, userID int, lessonID uuid.UUID, req *model.CompleteLessonRequest) (*model.CompleteLessonResult, error) {
	lesson, err := s.courseRepo.GetLessonByID(ctx, lessonID)
	if err != nil || !lesson.IsPublished {
		return nil, ErrLessonNotFound
	}
	courseID, err := s.courseRepo.GetCourseIDForLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if _, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID); err != nil {
		return nil, ErrNotEnrolled
	}

	progress, firstCompletion, err := s.progressRepo.MarkCompleted(ctx, userID, lessonID, req.TimeSpentMinutes)
	if err != nil {
		return nil, err
	}

	percentage, err := s.CalculateProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	previous, err := s.enrollmentRepo.UpdateProgress(ctx, userID, courseID, percentage)
	if err != nil {
		return nil, err
	}

	// Edge trigger: only the update that crosses into 100 issues the
	// certificate and fires completion events. Replays see previous == 100
	// and do nothing.
	courseCompleted := percentage >= 100 && previous < 100

	result := &model.CompleteLessonResult{
		Progress:             progress,
		CompletionPercentage: percentage,
		CourseCompleted:      courseCompleted,
	}

	if courseCompleted {
		cert, err := s.certificates.Issue(ctx, userID, courseID)
		if err != nil {
			// Certificate issuance failing must not undo the completion.
			s.log.Error().Err(err).Int("user_id", userID).Str("course_id", courseID.String()).Msg("Certificate issuance failed on completion")
		} else {
			result.Certificate = cert
		}
	}

	result.UnlockedAchievements = s.fireProgressEvents(ctx, userID, courseID, lesson, firstCompletion, courseCompleted)
	return result, nil
}

// fireProgressEvents runs the unlock engine for the completion and any
// module or course transitions it caused.
func (s *ProgressService) fireProgressEvents(ctx context.Context, userID int, courseID uuid.UUID, lesson *model.Lesson, firstCompletion, courseCompleted bool) []model.UnlockedAchievement {
	ectx := &model.EventContext{
		CourseID: &courseID,
		ModuleID: &lesson.ModuleID,
		LessonID: &lesson.ID,
	}

	unlocked := s.achievements.CheckAndUnlock(ctx, userID, model.EventLessonCompletion, ectx)

	if firstCompletion && s.moduleCompleted(ctx, userID, lesson.ModuleID) {
		unlocked = append(unlocked, s.achievements.CheckAndUnlock(ctx, userID, model.EventModuleCompletion, ectx)...)
	}
	if courseCompleted {
		unlocked = append(unlocked, s.achievements.CheckAndUnlock(ctx, userID, model.EventCourseCompletion, ectx)...)
		unlocked = append(unlocked, s.achievements.CheckAndUnlock(ctx, userID, model.EventCertificateIssued, ectx)...)
	}
	return unlocked
}

// moduleCompleted reports whether every published lesson of the module is
// now completed.
func (s *ProgressService) moduleCompleted(ctx context.Context, userID int, moduleID uuid.UUID) bool {
	total, err := s.courseRepo.CountPublishedLessonsInModule(ctx, moduleID)
	if err != nil || total == 0 {
		return false
	}
	completed, err := s.progressRepo.CountCompletedInModule(ctx, userID, moduleID)
	if err != nil {
		return false
	}
	return completed >= total
}

// CalculateProgress derives the completion percentage from lesson_progress
// against the course's published lessons. A course with no published
// lessons is 0 percent complete.
func (s *ProgressService) CalculateProgress(ctx context.Context, userID int, courseID uuid.UUID) (float64, error) {
	total, err := s.courseRepo.CountPublishedLessons(ctx, courseID)
	if err != nil {
		return 0, err
	}
	completed, err := s.progressRepo.CountCompletedInCourse(ctx, userID, courseID)
	if err != nil {
		return 0, err
	}
	return completionPercentage(completed, total), nil
}

// completionPercentage rounds to two decimals and clamps at 100 so a stale
// count can never report an over-complete course.
func completionPercentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := round2(float64(completed) / float64(total) * 100)
	return min(pct, 100)
}
