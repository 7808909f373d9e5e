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

// StudyHandler handles lesson completion, notes, and bookmarks.
type StudyHandler struct {
	progressService *service.ProgressService
	studyService    *service.StudyService
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(progressService *service.ProgressService, studyService *service.StudyService) *StudyHandler {
	return &StudyHandler{progressService: progressService, studyService: studyService}
}

// CompleteLesson godoc
// POST /api/v1/lessons/:lesson_id/complete
// Marks a lesson complete and returns the updated course progress, any
// issued certificate, and any unlocked achievements.
func (h *StudyHandler) CompleteLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CompleteLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.progressService.CompleteLesson(c.Request.Context(), claims.UserID, lessonID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotEnrolled):
			response.Fail(c, http.StatusForbidden, response.ErrEnrollmentRequired)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, result)
}

// CreateNote godoc
// POST /api/v1/lessons/:lesson_id/notes
func (h *StudyHandler) CreateNote(c *gin.Context) {
	claims := middleware.GetClaims(c)
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateNoteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	note, unlocked, err := h.studyService.CreateNote(c.Request.Context(), claims.UserID, lessonID, &req)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"note": note, "unlocked_achievements": unlocked})
}

// ListNotes godoc
// GET /api/v1/lessons/:lesson_id/notes
func (h *StudyHandler) ListNotes(c *gin.Context) {
	claims := middleware.GetClaims(c)
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	notes, err := h.studyService.ListNotes(c.Request.Context(), claims.UserID, lessonID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"notes": notes})
}

// UpdateNote godoc
// PATCH /api/v1/notes/:note_id
func (h *StudyHandler) UpdateNote(c *gin.Context) {
	claims := middleware.GetClaims(c)
	noteID, err := uuid.Parse(c.Param("note_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateNoteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	note, err := h.studyService.UpdateNote(c.Request.Context(), claims.UserID, noteID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoteNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotNoteOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"note": note})
}

// DeleteNote godoc
// DELETE /api/v1/notes/:note_id
func (h *StudyHandler) DeleteNote(c *gin.Context) {
	claims := middleware.GetClaims(c)
	noteID, err := uuid.Parse(c.Param("note_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.studyService.DeleteNote(c.Request.Context(), claims.UserID, noteID); err != nil {
		switch {
		case errors.Is(err, service.ErrNoteNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotNoteOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AddBookmark godoc
// PUT /api/v1/lessons/:lesson_id/bookmark
// Idempotent.
func (h *StudyHandler) AddBookmark(c *gin.Context) {
	claims := middleware.GetClaims(c)
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	unlocked, err := h.studyService.AddBookmark(c.Request.Context(), claims.UserID, lessonID)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookmarked": true, "unlocked_achievements": unlocked})
}

// RemoveBookmark godoc
// DELETE /api/v1/lessons/:lesson_id/bookmark
func (h *StudyHandler) RemoveBookmark(c *gin.Context) {
	claims := middleware.GetClaims(c)
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.studyService.RemoveBookmark(c.Request.Context(), claims.UserID, lessonID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookmarked": false})
}

// ListBookmarks godoc
// GET /api/v1/bookmarks
func (h *StudyHandler) ListBookmarks(c *gin.Context) {
	claims := middleware.GetClaims(c)

	bookmarks, err := h.studyService.ListBookmarks(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookmarks": bookmarks})
}
