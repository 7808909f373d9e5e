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

// AchievementHandler handles achievement, points, and leaderboard endpoints.
type AchievementHandler struct {
	achievementService *service.AchievementService
}

// NewAchievementHandler creates a new AchievementHandler.
func NewAchievementHandler(achievementService *service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// ListMyAchievements godoc
// GET /api/v1/achievements
// Returns unlocked achievements plus locked non-secret ones.
func (h *AchievementHandler) ListMyAchievements(c *gin.Context) {
	claims := middleware.GetClaims(c)

	locked, unlocked, err := h.achievementService.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unlocked": unlocked, "locked": locked})
}

// GetMyPoints godoc
// GET /api/v1/achievements/points
func (h *AchievementHandler) GetMyPoints(c *gin.Context) {
	claims := middleware.GetClaims(c)

	points, err := h.achievementService.GetUserPoints(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"points": points})
}

// GetLeaderboard godoc
// GET /api/v1/leaderboard
func (h *AchievementHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.achievementService.GetLeaderboard(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}

// ─── Admin ─────────────────────────────────────────────────────────────────

// ListAllAchievements godoc
// GET /api/v1/admin/achievements
// Includes inactive and secret definitions.
func (h *AchievementHandler) ListAllAchievements(c *gin.Context) {
	achievements, err := h.achievementService.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"achievements": achievements})
}

// CreateAchievement godoc
// POST /api/v1/admin/achievements
func (h *AchievementHandler) CreateAchievement(c *gin.Context) {
	var req model.CreateAchievementRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	achievement, err := h.achievementService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCriteria) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidCriteria)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"achievement": achievement})
}

// UpdateAchievement godoc
// PATCH /api/v1/admin/achievements/:achievement_id
func (h *AchievementHandler) UpdateAchievement(c *gin.Context) {
	achievementID, err := uuid.Parse(c.Param("achievement_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateAchievementRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	achievement, err := h.achievementService.Update(c.Request.Context(), achievementID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAchievementNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrInvalidCriteria):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidCriteria)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"achievement": achievement})
}

// DeleteAchievement godoc
// DELETE /api/v1/admin/achievements/:achievement_id
func (h *AchievementHandler) DeleteAchievement(c *gin.Context) {
	achievementID, err := uuid.Parse(c.Param("achievement_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.achievementService.Delete(c.Request.Context(), achievementID); err != nil {
		if errors.Is(err, service.ErrAchievementNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
