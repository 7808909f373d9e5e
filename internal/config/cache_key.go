package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding a user's active token ID.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// QuizPayloadKey returns the cache key for a published quiz's student-facing
// payload (questions without correct answers).
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// LeaderboardKey returns the sorted-set key mirroring achievement points.
func (r *CacheKeyStruct) LeaderboardKey() string {
	return "leaderboard:points"
}

var CacheKey = NewCacheKeyStruct()
