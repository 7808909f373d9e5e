package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/middleware"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/response"
	"github.com/lumina-lms/lumina-backend/internal/service"
	"github.com/lumina-lms/lumina-backend/internal/validator"
)

// QuizHandler handles quiz authoring endpoints for instructors.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// failQuizError maps quiz service errors to API responses.
func failQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotCourseOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotCourseOwner)
	case errors.Is(err, service.ErrQuizNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// CreateQuiz godoc
// POST /api/v1/modules/:module_id/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	moduleID, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), moduleID, claims, &req)
	if err != nil {
		failQuizError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// UpdateQuiz godoc
// PUT /api/v1/quizzes/:quiz_id
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), quizID, claims, &req)
	if err != nil {
		failQuizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// AddQuestion godoc
// POST /api/v1/quizzes/:quiz_id/questions
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.quizService.AddQuestion(c.Request.Context(), quizID, claims, &req)
	if err != nil {
		failQuizError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// ReplaceQuestions godoc
// PUT /api/v1/quizzes/:quiz_id/questions
// Replaces the full question set in one shot.
func (h *QuizHandler) ReplaceQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.quizService.ReplaceQuestions(c.Request.Context(), quizID, claims, &req); err != nil {
		failQuizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"replaced": true})
}

// ListQuestions godoc
// GET /api/v1/quizzes/:quiz_id/questions
// Owner-only view that includes correct answers.
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.quizService.ListQuestions(c.Request.Context(), quizID, claims)
	if err != nil {
		failQuizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// PublishQuiz godoc
// POST /api/v1/quizzes/:quiz_id/publish
func (h *QuizHandler) PublishQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quiz, err := h.quizService.Publish(c.Request.Context(), quizID, claims)
	if err != nil {
		failQuizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// UnpublishQuiz godoc
// POST /api/v1/quizzes/:quiz_id/unpublish
func (h *QuizHandler) UnpublishQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.quizService.Unpublish(c.Request.Context(), quizID, claims); err != nil {
		failQuizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"published": false})
}

// DeleteQuiz godoc
// DELETE /api/v1/quizzes/:quiz_id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), quizID, claims); err != nil {
		failQuizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GetQuestionStats godoc
// GET /api/v1/quizzes/:quiz_id/stats
// Per-question answer counts and average time, aggregated asynchronously.
func (h *QuizHandler) GetQuestionStats(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	stats, err := h.quizService.GetQuestionStats(c.Request.Context(), quizID, claims)
	if err != nil {
		failQuizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
