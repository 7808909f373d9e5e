package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Every defined code must resolve to its own message; a code falling through
// to the default string means the switch and the const block drifted apart.
func TestGetMessageCoversAllCodes(t *testing.T) {
	codes := []ErrCode{
		ErrInvalidCredentials, ErrEmailTaken, ErrSessionInvalidated,
		ErrTokenRequired, ErrTokenInvalid, ErrTokenExpired,
		ErrForbidden, ErrNotCourseOwner, ErrEnrollmentRequired,
		ErrValidation, ErrInvalidID, ErrInvalidPayload,
		ErrNotFound, ErrActionForbidden,
		ErrCourseNotPublished, ErrQuizNotPublished, ErrNoQuestions,
		ErrMaxAttemptsReached, ErrAttemptNotGradable, ErrSubmissionConflict,
		ErrInvalidCriteria, ErrCourseNotCompleted, ErrCertificateNotFound,
		ErrRateLimitExceeded, ErrInternal,
	}

	fallback := GetMessage(ErrCode("NO_SUCH_CODE"))
	for _, code := range codes {
		assert.NotEqual(t, fallback, GetMessage(code), "code %s has no message", code)
	}
}
