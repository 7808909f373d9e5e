package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AchievementTier enumerates badge tiers.
type AchievementTier string

const (
	TierBronze   AchievementTier = "bronze"
	TierSilver   AchievementTier = "silver"
	TierGold     AchievementTier = "gold"
	TierPlatinum AchievementTier = "platinum"
)

// Achievement is a badge with a typed unlock rule. UnlockCriteria holds the
// serialized criterion; decode it with ParseCriterion.
type Achievement struct {
	ID             uuid.UUID       `json:"id"`
	Category       string          `json:"category"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Tier           AchievementTier `json:"tier"`
	Points         int             `json:"points"`
	UnlockCriteria json.RawMessage `json:"unlock_criteria"`
	IsSecret       bool            `json:"is_secret"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// UserAchievement is the unlock record. Its existence is the sole evidence
// of "unlocked"; UnlockedAt is immutable once set.
type UserAchievement struct {
	UserID        int       `json:"user_id"`
	AchievementID uuid.UUID `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// UserPoints is the per-user aggregate cache maintained by the unlock engine.
type UserPoints struct {
	UserID        int `json:"user_id"`
	TotalPoints   int `json:"total_points"`
	BronzeCount   int `json:"bronze_count"`
	SilverCount   int `json:"silver_count"`
	GoldCount     int `json:"gold_count"`
	PlatinumCount int `json:"platinum_count"`
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      int    `json:"user_id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"total_points"`
}

// UnlockedAchievement pairs an achievement with its unlock timestamp.
type UnlockedAchievement struct {
	Achievement
	UnlockedAt time.Time `json:"unlocked_at"`
}

// CreateAchievementRequest is the payload for admin achievement creation.
// UnlockCriteria must parse as a known criterion.
type CreateAchievementRequest struct {
	Category       string          `json:"category" binding:"required,max=100"`
	Name           string          `json:"name" binding:"required,min=1,max=255"`
	Description    string          `json:"description" binding:"omitempty,max=2000"`
	Tier           string          `json:"tier" binding:"required,oneof=bronze silver gold platinum"`
	Points         int             `json:"points" binding:"required,min=1,max=10000"`
	UnlockCriteria json.RawMessage `json:"unlock_criteria" binding:"required"`
	IsSecret       bool            `json:"is_secret"`
}

// UpdateAchievementRequest is the payload for admin achievement updates.
type UpdateAchievementRequest struct {
	Category       string          `json:"category" binding:"omitempty,max=100"`
	Name           string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description    string          `json:"description" binding:"omitempty,max=2000"`
	Tier           string          `json:"tier" binding:"omitempty,oneof=bronze silver gold platinum"`
	Points         *int            `json:"points" binding:"omitempty,min=1,max=10000"`
	UnlockCriteria json.RawMessage `json:"unlock_criteria" binding:"omitempty"`
	IsSecret       *bool           `json:"is_secret" binding:"omitempty"`
	IsActive       *bool           `json:"is_active" binding:"omitempty"`
}
