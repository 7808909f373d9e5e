package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_ALREADY_REGISTERED"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrNotCourseOwner     ErrCode = "NOT_COURSE_OWNER"
	ErrEnrollmentRequired ErrCode = "ENROLLMENT_REQUIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Course & quiz ─────────────────────────────────────────────────
	ErrCourseNotPublished  ErrCode = "COURSE_NOT_PUBLISHED"
	ErrQuizNotPublished    ErrCode = "QUIZ_NOT_PUBLISHED"
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"
	ErrMaxAttemptsReached  ErrCode = "MAX_ATTEMPTS_REACHED"
	ErrAttemptNotGradable  ErrCode = "ATTEMPT_NOT_GRADABLE"
	ErrSubmissionConflict  ErrCode = "SUBMISSION_CONFLICT"
	ErrInvalidCriteria     ErrCode = "INVALID_UNLOCK_CRITERIA"
	ErrCourseNotCompleted  ErrCode = "COURSE_NOT_COMPLETED"
	ErrCertificateNotFound ErrCode = "CERTIFICATE_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrNotCourseOwner:
		return "You are not the instructor of this course."
	case ErrEnrollmentRequired:
		return "You must be enrolled in this course first."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Course & quiz ─────────────────────────────────────────────────
	case ErrCourseNotPublished:
		return "This course is not published."
	case ErrQuizNotPublished:
		return "This quiz is not published."
	case ErrNoQuestions:
		return "This quiz has no questions."
	case ErrMaxAttemptsReached:
		return "You have reached the attempt limit for this quiz."
	case ErrAttemptNotGradable:
		return "This attempt cannot be graded."
	case ErrSubmissionConflict:
		return "Your submission collided with another. Please try again."
	case ErrInvalidCriteria:
		return "The unlock criteria definition is invalid."
	case ErrCourseNotCompleted:
		return "This course has not been completed yet."
	case ErrCertificateNotFound:
		return "Certificate not found."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
