package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states.
//
// InProgress moves to Submitted (candidate action) or Timeout (forced by
// the monitor); both feed the grading engine, which promotes the session
// to Graded once every answer entry carries a grade. Completed is an
// administrative closure applied after grading.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusSubmitted  SessionStatus = "SUBMITTED"
	SessionStatusTimeout    SessionStatus = "TIMEOUT"
	SessionStatusGraded     SessionStatus = "GRADED"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// Ended reports whether the session left the InProgress state.
func (s SessionStatus) Ended() bool {
	return s != SessionStatusInProgress
}

// Finished reports whether the session reached a fully graded terminal
// state. Statistics count these rows as completed attempts.
func (s SessionStatus) Finished() bool {
	return s == SessionStatusGraded || s == SessionStatusCompleted
}

// ExamSession represents one candidate's attempt at one paper.
type ExamSession struct {
	ID          uuid.UUID `json:"id"`
	CandidateID int       `json:"candidate_id"`
	PaperID     uuid.UUID `json:"paper_id"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	GradedAt    *time.Time `json:"graded_at,omitempty"`

	Status SessionStatus `json:"status"`

	// RemainingSeconds is advisory only: clients report it so a resumed
	// UI can restore its countdown. Timeout detection always recomputes
	// elapsed time from StartedAt.
	RemainingSeconds int `json:"remaining_seconds"`

	TotalCount     int     `json:"total_count"`
	CorrectCount   int     `json:"correct_count"`
	ObjectiveScore float64 `json:"objective_score"`
	SubjectiveScore float64 `json:"subjective_score"`
	TotalScore     float64 `json:"total_score"`
	IsPassed       bool    `json:"is_passed"`
	GraderID       *int    `json:"grader_id,omitempty"`
}

// AnswerEntry is the mutable record of one question's answer and grade
// within a session. One entry exists per paper question from the moment
// the session is created; answers are updated in place, never inserted
// later.
type AnswerEntry struct {
	SessionID  uuid.UUID `json:"session_id"`
	QuestionID uuid.UUID `json:"question_id"`

	SubmittedAnswer *string    `json:"submitted_answer,omitempty"`
	AnsweredAt      *time.Time `json:"answered_at,omitempty"`

	Score     float64    `json:"score"`
	IsCorrect bool       `json:"is_correct"`
	IsGraded  bool       `json:"is_graded"`
	GradedAt  *time.Time `json:"graded_at,omitempty"`
	GraderID  *int       `json:"grader_id,omitempty"`
	Comment   *string    `json:"comment,omitempty"`
}

// SessionView bundles a session with its answer entries, in paper
// question order.
type SessionView struct {
	Session *ExamSession  `json:"session"`
	Answers []AnswerEntry `json:"answers"`
}

// SaveAnswerRequest is the payload for saving a candidate's answer.
type SaveAnswerRequest struct {
	Answer string `json:"answer" binding:"max=10000"`
}

// UpdateRemainingTimeRequest is the payload for the advisory countdown sync.
type UpdateRemainingTimeRequest struct {
	RemainingSeconds int `json:"remaining_seconds" binding:"min=0"`
}

// RecordSubjectiveScoreRequest is the payload for a human grader's score.
type RecordSubjectiveScoreRequest struct {
	Score   float64 `json:"score" binding:"min=0"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}
