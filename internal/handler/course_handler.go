package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/middleware"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/response"
	"github.com/lumina-lms/lumina-backend/internal/service"
	"github.com/lumina-lms/lumina-backend/internal/validator"
)

// CourseHandler handles catalog and course authoring endpoints.
type CourseHandler struct {
	courseService *service.CourseService
	quizService   *service.QuizService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService, quizService *service.QuizService) *CourseHandler {
	return &CourseHandler{courseService: courseService, quizService: quizService}
}

func failCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotCourseOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotCourseOwner)
	case errors.Is(err, service.ErrCourseNotPublished):
		response.Fail(c, http.StatusNotFound, response.ErrCourseNotPublished)
	case errors.Is(err, service.ErrCourseEmpty):
		response.Fail(c, http.StatusBadRequest, response.ErrActionForbidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// ListCatalog godoc
// GET /api/v1/courses
// Lists published courses with optional ?category= and ?difficulty= filters.
func (h *CourseHandler) ListCatalog(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	var category, difficulty *string
	if v := c.Query("category"); v != "" {
		category = &v
	}
	if v := c.Query("difficulty"); v != "" {
		difficulty = &v
	}

	courses, pagination, err := h.courseService.ListCatalog(c.Request.Context(), category, difficulty, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, pagination)
}

// GetCourse godoc
// GET /api/v1/courses/:course_id
// Returns a published course with its modules.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	course, err := h.courseService.GetPublished(c.Request.Context(), courseID)
	if err != nil {
		failCourseError(c, err)
		return
	}

	modules, err := h.courseService.ListModules(c.Request.Context(), courseID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course, "modules": modules})
}

// ListModuleLessons godoc
// GET /api/v1/modules/:module_id/lessons
// Lists a module's lessons in position order.
func (h *CourseHandler) ListModuleLessons(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	lessons, err := h.courseService.ListLessons(c.Request.Context(), moduleID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	quizzes, err := h.quizService.ListByModule(c.Request.Context(), moduleID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lessons": lessons, "quizzes": quizzes})
}

// GetLesson godoc
// GET /api/v1/lessons/:lesson_id
// Returns a single lesson's content.
func (h *CourseHandler) GetLesson(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	lesson, err := h.courseService.GetLesson(c.Request.Context(), lessonID)
	if err != nil || !lesson.IsPublished {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lesson": lesson})
}

// ListProjects godoc
// GET /api/v1/courses/:course_id/projects
// Lists a course's hands-on projects.
func (h *CourseHandler) ListProjects(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	projects, err := h.courseService.ListProjects(c.Request.Context(), courseID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"projects": projects})
}

// ─── Instructor surface ────────────────────────────────────────────────────

// CreateCourse godoc
// POST /api/v1/instructor/courses
// Creates a draft course.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// ListMyCourses godoc
// GET /api/v1/instructor/courses
// Lists the instructor's own courses, drafts included.
func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	courses, pagination, err := h.courseService.ListByInstructor(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, pagination)
}

// UpdateCourse godoc
// PATCH /api/v1/instructor/courses/:course_id
// Updates course metadata.
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), courseID, claims, &req)
	if err != nil {
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// PublishCourse godoc
// POST /api/v1/instructor/courses/:course_id/publish
// Publishes a course to the catalog.
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	course, err := h.courseService.Publish(c.Request.Context(), courseID, claims)
	if err != nil {
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// ArchiveCourse godoc
// POST /api/v1/instructor/courses/:course_id/archive
// Hides a course from the catalog.
func (h *CourseHandler) ArchiveCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.courseService.Archive(c.Request.Context(), courseID, claims); err != nil {
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"archived": true})
}

// DeleteCourse godoc
// DELETE /api/v1/instructor/courses/:course_id
// Removes a course and everything under it.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), courseID, claims); err != nil {
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AddModule godoc
// POST /api/v1/instructor/courses/:course_id/modules
func (h *CourseHandler) AddModule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	module, err := h.courseService.AddModule(c.Request.Context(), courseID, claims, &req)
	if err != nil {
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"module": module})
}

// DeleteModule godoc
// DELETE /api/v1/instructor/courses/:course_id/modules/:module_id
func (h *CourseHandler) DeleteModule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	moduleID, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.courseService.DeleteModule(c.Request.Context(), courseID, moduleID, claims); err != nil {
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AddLesson godoc
// POST /api/v1/instructor/courses/:course_id/modules/:module_id/lessons
func (h *CourseHandler) AddLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	moduleID, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lesson, err := h.courseService.AddLesson(c.Request.Context(), courseID, moduleID, claims, &req)
	if err != nil {
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"lesson": lesson})
}

// UpdateLesson godoc
// PATCH /api/v1/instructor/courses/:course_id/lessons/:lesson_id
func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lesson, err := h.courseService.UpdateLesson(c.Request.Context(), courseID, lessonID, claims, &req)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lesson": lesson})
}

// DeleteLesson godoc
// DELETE /api/v1/instructor/courses/:course_id/lessons/:lesson_id
func (h *CourseHandler) DeleteLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.courseService.DeleteLesson(c.Request.Context(), courseID, lessonID, claims); err != nil {
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AddProject godoc
// POST /api/v1/instructor/courses/:course_id/projects
func (h *CourseHandler) AddProject(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateProjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	project, err := h.courseService.AddProject(c.Request.Context(), courseID, claims, &req)
	if err != nil {
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"project": project})
}

// DeleteProject godoc
// DELETE /api/v1/instructor/courses/:course_id/projects/:project_id
func (h *CourseHandler) DeleteProject(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.courseService.DeleteProject(c.Request.Context(), courseID, projectID, claims); err != nil {
		failCourseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
