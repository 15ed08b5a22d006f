package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Session-specific ──────────────────────────────────────────────
	ErrFormMalformed      ErrCode = "FORM_MALFORMED"
	ErrSessionNotReady    ErrCode = "SESSION_NOT_READY"
	ErrFullscreenRequired ErrCode = "FULLSCREEN_REQUIRED"
	ErrInvalidAnswer      ErrCode = "INVALID_ANSWER"
	ErrIncompleteAnswers  ErrCode = "INCOMPLETE_ANSWERS"
	ErrAlreadySubmitted   ErrCode = "ALREADY_SUBMITTED"
	ErrSubmitPending      ErrCode = "SUBMIT_PENDING"
	ErrSubmissionFailed   ErrCode = "SUBMISSION_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is not valid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is not valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."

	// ─── Session-specific ──────────────────────────────────────────────
	case ErrFormMalformed:
		return "The form definition is malformed and cannot be attempted."
	case ErrSessionNotReady:
		return "The session is not accepting this action yet."
	case ErrFullscreenRequired:
		return "Fullscreen mode is required to continue this form."
	case ErrInvalidAnswer:
		return "The answer does not match any option for this question."
	case ErrIncompleteAnswers:
		return "All questions must be answered before submitting."
	case ErrAlreadySubmitted:
		return "This form has already been submitted."
	case ErrSubmitPending:
		return "A submission is already in progress."
	case ErrSubmissionFailed:
		return "Submission failed. Your answers are preserved; please try again."

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
