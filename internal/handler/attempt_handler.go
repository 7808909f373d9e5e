package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/middleware"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/repository"
	"github.com/lumina-lms/lumina-backend/internal/response"
	"github.com/lumina-lms/lumina-backend/internal/service"
	"github.com/lumina-lms/lumina-backend/internal/validator"
)

// AttemptHandler handles quiz taking and grading endpoints.
type AttemptHandler struct {
	attemptService *service.QuizAttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.QuizAttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// StartAttempt godoc
// POST /api/v1/quizzes/:quiz_id/attempts
// Returns the quiz payload without correct answers.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.attemptService.Start(c.Request.Context(), claims.UserID, quizID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrQuizNotPublished):
			response.Fail(c, http.StatusBadRequest, response.ErrQuizNotPublished)
		case errors.Is(err, service.ErrNotEnrolled):
			response.Fail(c, http.StatusForbidden, response.ErrEnrollmentRequired)
		case errors.Is(err, service.ErrMaxAttemptsReached):
			response.Fail(c, http.StatusForbidden, response.ErrMaxAttemptsReached)
		case errors.Is(err, service.ErrQuizNoQuestions):
			response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": payload})
}

// SubmitAttempt godoc
// POST /api/v1/quizzes/:quiz_id/attempts/submit
// Scores the submission and returns the attempt with any unlocked
// achievements.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), claims.UserID, quizID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrQuizNotPublished):
			response.Fail(c, http.StatusBadRequest, response.ErrQuizNotPublished)
		case errors.Is(err, service.ErrNotEnrolled):
			response.Fail(c, http.StatusForbidden, response.ErrEnrollmentRequired)
		case errors.Is(err, service.ErrMaxAttemptsReached):
			response.Fail(c, http.StatusForbidden, response.ErrMaxAttemptsReached)
		case errors.Is(err, repository.ErrAttemptNumberContention):
			response.Fail(c, http.StatusConflict, response.ErrSubmissionConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// ListMyAttempts godoc
// GET /api/v1/quizzes/:quiz_id/attempts
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempts, err := h.attemptService.ListMyAttempts(c.Request.Context(), claims.UserID, quizID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// GetAttempt godoc
// GET /api/v1/attempts/:attempt_id
// Visible to the attempt owner and the quiz's instructor.
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, answers, err := h.attemptService.GetAttempt(c.Request.Context(), attemptID, claims)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotCourseOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt, "answers": answers})
}

// ListQuizAttempts godoc
// GET /api/v1/quizzes/:quiz_id/attempts/all
// Instructor view of every attempt on a quiz.
func (h *AttemptHandler) ListQuizAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	attempts, pagination, err := h.attemptService.ListQuizAttempts(c.Request.Context(), quizID, claims, page, perPage)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotCourseOwner):
			response.Fail(c, http.StatusForbidden, response.ErrNotCourseOwner)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, pagination)
}

// GradeAttempt godoc
// POST /api/v1/attempts/:attempt_id/grade
// Records an instructor score override and feedback.
func (h *AttemptHandler) GradeAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GradeAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attemptService.Grade(c.Request.Context(), attemptID, claims, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotCourseOwner):
			response.Fail(c, http.StatusForbidden, response.ErrNotCourseOwner)
		case errors.Is(err, service.ErrAttemptNotGradable):
			response.Fail(c, http.StatusBadRequest, response.ErrAttemptNotGradable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}
