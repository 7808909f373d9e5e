package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/repository"
	"github.com/lumina-lms/lumina-backend/internal/response"
	"github.com/rs/zerolog"
)

// Common course errors.
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrNotCourseOwner     = errors.New("user is not the course instructor")
	ErrCourseNotPublished = errors.New("course is not published")
	ErrCourseEmpty        = errors.New("course has no published lessons, cannot publish")
)

// CourseService handles catalog business logic.
type CourseService struct {
	courseRepo *repository.CourseRepository
	log        zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courseRepo *repository.CourseRepository, log zerolog.Logger) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		log:        log.With().Str("component", "course_service").Logger(),
	}
}

// GetByID retrieves a course.
func (s *CourseService) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// GetPublished retrieves a course and verifies it is visible to students.
// Admins and the owning instructor should use GetByID instead.
func (s *CourseService) GetPublished(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.Status != model.CourseStatusPublished {
		return nil, ErrCourseNotPublished
	}
	return course, nil
}

// requireOwner loads a course and checks instructor ownership. Admins pass
// the check for any course.
func (s *CourseService) requireOwner(ctx context.Context, courseID uuid.UUID, claims *Claims) (*model.Course, error) {
	course, err := s.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if claims.Role != model.RoleAdmin && course.InstructorID != claims.UserID {
		return nil, ErrNotCourseOwner
	}
	return course, nil
}

// Create inserts a new draft course owned by the instructor.
func (s *CourseService) Create(ctx context.Context, instructorID int, req *model.CreateCourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: instructorID,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Status:       model.CourseStatusDraft,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	s.log.Info().Str("course_id", course.ID.String()).Int("instructor_id", instructorID).Msg("Course created")
	return course, nil
}

// Update modifies a course's metadata.
func (s *CourseService) Update(ctx context.Context, courseID uuid.UUID, claims *Claims, req *model.UpdateCourseRequest) (*model.Course, error) {
	course, err := s.requireOwner(ctx, courseID, claims)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		course.Title = req.Title
	}
	if req.Description != "" {
		course.Description = req.Description
	}
	if req.Category != "" {
		course.Category = req.Category
	}
	if req.Difficulty != "" {
		course.Difficulty = req.Difficulty
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Publish makes a course visible in the catalog. A course without published
// lessons cannot be published.
func (s *CourseService) Publish(ctx context.Context, courseID uuid.UUID, claims *Claims) (*model.Course, error) {
	course, err := s.requireOwner(ctx, courseID, claims)
	if err != nil {
		return nil, err
	}

	lessons, err := s.courseRepo.CountPublishedLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if lessons == 0 {
		return nil, ErrCourseEmpty
	}

	if err := s.courseRepo.UpdateStatus(ctx, courseID, model.CourseStatusPublished); err != nil {
		return nil, err
	}
	course.Status = model.CourseStatusPublished
	s.log.Info().Str("course_id", courseID.String()).Msg("Course published")
	return course, nil
}

// Archive hides a course from the catalog without touching enrollments.
func (s *CourseService) Archive(ctx context.Context, courseID uuid.UUID, claims *Claims) error {
	if _, err := s.requireOwner(ctx, courseID, claims); err != nil {
		return err
	}
	return s.courseRepo.UpdateStatus(ctx, courseID, model.CourseStatusArchived)
}

// Delete removes a course and everything under it.
func (s *CourseService) Delete(ctx context.Context, courseID uuid.UUID, claims *Claims) error {
	if _, err := s.requireOwner(ctx, courseID, claims); err != nil {
		return err
	}
	if err := s.courseRepo.Delete(ctx, courseID); err != nil {
		return err
	}
	s.log.Info().Str("course_id", courseID.String()).Msg("Course deleted")
	return nil
}

// ListCatalog retrieves published courses with optional category and
// difficulty filters.
func (s *CourseService) ListCatalog(ctx context.Context, category, difficulty *string, page, perPage int) ([]model.Course, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	courses, total, err := s.courseRepo.ListPublishedPaginated(ctx, category, difficulty, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return courses, pagination, nil
}

// ListByInstructor retrieves an instructor's own courses, drafts included.
func (s *CourseService) ListByInstructor(ctx context.Context, instructorID, page, perPage int) ([]model.Course, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	courses, total, err := s.courseRepo.ListByInstructorPaginated(ctx, instructorID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return courses, pagination, nil
}

// ─── Modules ───────────────────────────────────────────────────────────────

// AddModule appends a module to a course.
func (s *CourseService) AddModule(ctx context.Context, courseID uuid.UUID, claims *Claims, req *model.CreateModuleRequest) (*model.Module, error) {
	if _, err := s.requireOwner(ctx, courseID, claims); err != nil {
		return nil, err
	}

	module := &model.Module{
		CourseID: courseID,
		Title:    req.Title,
		Summary:  req.Summary,
		Position: req.Position,
	}
	if err := s.courseRepo.CreateModule(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

// ListModules retrieves a course's modules in position order.
func (s *CourseService) ListModules(ctx context.Context, courseID uuid.UUID) ([]model.Module, error) {
	return s.courseRepo.ListModulesByCourse(ctx, courseID)
}

// DeleteModule removes a module and its lessons.
func (s *CourseService) DeleteModule(ctx context.Context, courseID, moduleID uuid.UUID, claims *Claims) error {
	if _, err := s.requireOwner(ctx, courseID, claims); err != nil {
		return err
	}
	return s.courseRepo.DeleteModule(ctx, moduleID)
}

// ─── Lessons ───────────────────────────────────────────────────────────────

// AddLesson appends a lesson to a module.
func (s *CourseService) AddLesson(ctx context.Context, courseID, moduleID uuid.UUID, claims *Claims, req *model.CreateLessonRequest) (*model.Lesson, error) {
	if _, err := s.requireOwner(ctx, courseID, claims); err != nil {
		return nil, err
	}

	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}
	lesson := &model.Lesson{
		ModuleID:        moduleID,
		Title:           req.Title,
		Content:         req.Content,
		VideoURL:        req.VideoURL,
		DurationMinutes: req.DurationMinutes,
		Position:        req.Position,
		IsPublished:     published,
	}
	if err := s.courseRepo.CreateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// GetLesson retrieves a lesson.
func (s *CourseService) GetLesson(ctx context.Context, lessonID uuid.UUID) (*model.Lesson, error) {
	return s.courseRepo.GetLessonByID(ctx, lessonID)
}

// ListLessons retrieves a module's lessons in position order.
func (s *CourseService) ListLessons(ctx context.Context, moduleID uuid.UUID) ([]model.Lesson, error) {
	return s.courseRepo.ListLessonsByModule(ctx, moduleID)
}

// UpdateLesson modifies a lesson. Only the fields present in the request
// change.
func (s *CourseService) UpdateLesson(ctx context.Context, courseID, lessonID uuid.UUID, claims *Claims, req *model.UpdateLessonRequest) (*model.Lesson, error) {
	if _, err := s.requireOwner(ctx, courseID, claims); err != nil {
		return nil, err
	}

	lesson, err := s.courseRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, ErrLessonNotFound
	}

	if req.Title != "" {
		lesson.Title = req.Title
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.VideoURL != nil {
		lesson.VideoURL = req.VideoURL
	}
	if req.DurationMinutes != nil {
		lesson.DurationMinutes = *req.DurationMinutes
	}
	if req.Position != nil {
		lesson.Position = *req.Position
	}
	if req.IsPublished != nil {
		lesson.IsPublished = *req.IsPublished
	}

	if err := s.courseRepo.UpdateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// DeleteLesson removes a lesson.
func (s *CourseService) DeleteLesson(ctx context.Context, courseID, lessonID uuid.UUID, claims *Claims) error {
	if _, err := s.requireOwner(ctx, courseID, claims); err != nil {
		return err
	}
	return s.courseRepo.DeleteLesson(ctx, lessonID)
}

// ─── Projects ──────────────────────────────────────────────────────────────

// AddProject attaches a hands-on project to a course, optionally scoped to a
// module.
func (s *CourseService) AddProject(ctx context.Context, courseID uuid.UUID, claims *Claims, req *model.CreateProjectRequest) (*model.Project, error) {
	if _, err := s.requireOwner(ctx, courseID, claims); err != nil {
		return nil, err
	}

	project := &model.Project{
		CourseID:    courseID,
		ModuleID:    req.ModuleID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.courseRepo.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects retrieves a course's projects.
func (s *CourseService) ListProjects(ctx context.Context, courseID uuid.UUID) ([]model.Project, error) {
	return s.courseRepo.ListProjectsByCourse(ctx, courseID)
}

// DeleteProject removes a project.
func (s *CourseService) DeleteProject(ctx context.Context, courseID, projectID uuid.UUID, claims *Claims) error {
	if _, err := s.requireOwner(ctx, courseID, claims); err != nil {
		return err
	}
	return s.courseRepo.DeleteProject(ctx, projectID)
}
