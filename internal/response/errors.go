package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication / Authorization ────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrForbidden     ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Assessment-specific ───────────────────────────────────────────
	ErrTaskNotAssessable ErrCode = "TASK_NOT_ASSESSABLE"
	ErrSessionInactive   ErrCode = "SESSION_INACTIVE"

	// ─── Integrity-specific ────────────────────────────────────────────
	ErrBatchSessionUnknown ErrCode = "BATCH_SESSION_UNKNOWN"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Upstream / Server ─────────────────────────────────────────────
	ErrReportUnavailable ErrCode = "REPORT_UNAVAILABLE"
	ErrInternal          ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	case ErrNotFound:
		return "The requested resource was not found."

	case ErrTaskNotAssessable:
		return "This task is not configured for assessment mode."
	case ErrSessionInactive:
		return "The assessment session is not active."

	case ErrBatchSessionUnknown:
		return "The batch references an unknown monitoring session; no events were recorded."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrReportUnavailable:
		return "The report generator is unavailable."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
