package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden           ErrCode = "FORBIDDEN"
	ErrCandidateAccessOnly ErrCode = "CANDIDATE_ACCESS_ONLY"
	ErrAdminAccessOnly     ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Eligibility ───────────────────────────────────────────────────
	ErrPaperNotFound     ErrCode = "PAPER_NOT_FOUND"
	ErrPaperNotPublished ErrCode = "PAPER_NOT_PUBLISHED"
	ErrExamNotStarted    ErrCode = "EXAM_NOT_STARTED"
	ErrExamEnded         ErrCode = "EXAM_ENDED"
	ErrRetakeNotAllowed  ErrCode = "RETAKE_NOT_ALLOWED"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrWrongState        ErrCode = "WRONG_STATE"
	ErrNotGraded         ErrCode = "NOT_GRADED"
	ErrAnswerNotFound    ErrCode = "ANSWER_NOT_FOUND"
	ErrObjectiveQuestion ErrCode = "OBJECTIVE_QUESTION"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrCandidateAccessOnly:
		return "This resource is restricted to exam candidates."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Eligibility ───────────────────────────────────────────────────
	case ErrPaperNotFound:
		return "Exam paper not found."
	case ErrPaperNotPublished:
		return "This exam paper has not been published."
	case ErrExamNotStarted:
		return "This exam has not started yet."
	case ErrExamEnded:
		return "This exam has ended."
	case ErrRetakeNotAllowed:
		return "This exam does not allow retakes."

	// ─── Session lifecycle ─────────────────────────────────────────────
	case ErrWrongState:
		return "The session is not in a state that allows this operation."
	case ErrNotGraded:
		return "The session has not been fully graded yet."
	case ErrAnswerNotFound:
		return "Answer entry not found in this session."
	case ErrObjectiveQuestion:
		return "This question is graded automatically and cannot be scored manually."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
