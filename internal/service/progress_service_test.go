package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionPercentage(t *testing.T) {
	// A course with no published lessons is never "complete".
	assert.Equal(t, 0.0, completionPercentage(0, 0))
	assert.Equal(t, 0.0, completionPercentage(5, 0))

	assert.Equal(t, 0.0, completionPercentage(0, 10))
	assert.Equal(t, 50.0, completionPercentage(5, 10))
	assert.Equal(t, 100.0, completionPercentage(10, 10))

	// Rounds to two decimals.
	assert.Equal(t, 33.33, completionPercentage(1, 3))
	assert.Equal(t, 66.67, completionPercentage(2, 3))

	// A completed count above total (lesson unpublished after completion)
	// clamps instead of reporting an over-complete course.
	assert.Equal(t, 100.0, completionPercentage(12, 10))
}
