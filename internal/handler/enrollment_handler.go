package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/middleware"
	"github.com/lumina-lms/lumina-backend/internal/response"
	"github.com/lumina-lms/lumina-backend/internal/service"
)

// EnrollmentHandler handles enrollment and progress endpoints.
type EnrollmentHandler struct {
	progressService *service.ProgressService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(progressService *service.ProgressService) *EnrollmentHandler {
	return &EnrollmentHandler{progressService: progressService}
}

// Enroll godoc
// POST /api/v1/courses/:course_id/enroll
// Enrolls the caller in a published course. Idempotent.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	enrollment, err := h.progressService.Enroll(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrCourseNotPublished):
			response.Fail(c, http.StatusBadRequest, response.ErrCourseNotPublished)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"enrollment": enrollment})
}

// Unenroll godoc
// DELETE /api/v1/courses/:course_id/enroll
// Marks the enrollment inactive without discarding progress.
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.progressService.Unenroll(c.Request.Context(), claims.UserID, courseID); err != nil {
		if errors.Is(err, service.ErrNotEnrolled) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrolled": false})
}

// GetCourseEnrollmentCount godoc
// GET /api/v1/instructor/courses/:course_id/enrollments
func (h *EnrollmentHandler) GetCourseEnrollmentCount(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	count, err := h.progressService.CourseEnrollmentCount(c.Request.Context(), courseID, claims)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotCourseOwner):
			response.Fail(c, http.StatusForbidden, response.ErrNotCourseOwner)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrolled_count": count})
}

// ListMyEnrollments godoc
// GET /api/v1/enrollments
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	claims := middleware.GetClaims(c)

	enrollments, err := h.progressService.ListEnrollments(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// GetCourseProgress godoc
// GET /api/v1/courses/:course_id/progress
// Returns the caller's enrollment and per-lesson progress for a course.
func (h *EnrollmentHandler) GetCourseProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	progress, err := h.progressService.GetCourseProgress(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, service.ErrNotEnrolled) {
			response.Fail(c, http.StatusForbidden, response.ErrEnrollmentRequired)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"progress": progress})
}
