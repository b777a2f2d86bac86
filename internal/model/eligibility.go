package model

// EligibilityReason is the machine-readable cause of an eligibility denial.
type EligibilityReason string

const (
	ReasonPaperNotFound     EligibilityReason = "PAPER_NOT_FOUND"
	ReasonPaperNotPublished EligibilityReason = "PAPER_NOT_PUBLISHED"
	ReasonExamNotStarted    EligibilityReason = "EXAM_NOT_STARTED"
	ReasonExamEnded         EligibilityReason = "EXAM_ENDED"
	ReasonRetakeNotAllowed  EligibilityReason = "RETAKE_NOT_ALLOWED"
)

// EligibilityDecision is the outcome of the pre-start eligibility check.
// It is ephemeral and never persisted. When Resumable is set the
// candidate has an in-progress session that must be resumed instead of
// starting fresh.
type EligibilityDecision struct {
	Allowed   bool              `json:"allowed"`
	Reason    EligibilityReason `json:"reason,omitempty"`
	Message   string            `json:"message,omitempty"`
	Resumable *ExamSession      `json:"-"`
}

// Allow returns a passing decision.
func Allow() *EligibilityDecision {
	return &EligibilityDecision{Allowed: true}
}

// AllowResume returns a passing decision pointing at the session to resume.
func AllowResume(s *ExamSession) *EligibilityDecision {
	return &EligibilityDecision{Allowed: true, Resumable: s}
}

// Deny returns a failing decision with a typed reason.
func Deny(reason EligibilityReason, message string) *EligibilityDecision {
	return &EligibilityDecision{Allowed: false, Reason: reason, Message: message}
}
