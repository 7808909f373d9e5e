package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveScore(t *testing.T) {
	a := QuizAttempt{Score: 72.5}
	assert.Equal(t, 72.5, a.EffectiveScore())

	override := 88.0
	a.InstructorScore = &override
	assert.Equal(t, 88.0, a.EffectiveScore())

	// An override of zero still wins over the auto score.
	zero := 0.0
	a.InstructorScore = &zero
	assert.Equal(t, 0.0, a.EffectiveScore())
}
