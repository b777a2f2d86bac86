package service

import (
	"context"
	"errors"
	"time"

	"github.com/firegate/examcore/internal/model"
	"github.com/firegate/examcore/internal/repository"
	"github.com/google/uuid"
)

// Domain errors surfaced across the service boundary.
var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrWrongState        = errors.New("session is no longer in progress")
	ErrNotGraded         = errors.New("session is not graded yet")
	ErrAnswerNotFound    = errors.New("answer entry not found")
	ErrObjectiveQuestion = errors.New("question is graded automatically")
)

// EligibilityError carries a denial decision across the service boundary
// so handlers can surface the typed reason.
type EligibilityError struct {
	Decision *model.EligibilityDecision
}

func (e *EligibilityError) Error() string {
	return e.Decision.Message
}

// PaperResolver resolves read-only paper snapshots. Implemented by
// PaperService (cache fast lane over the paper repository).
type PaperResolver interface {
	ResolveSnapshot(ctx context.Context, paperID uuid.UUID) (*model.ExamPaperSnapshot, error)
}

// CandidateStore answers candidate existence checks.
type CandidateStore interface {
	Exists(ctx context.Context, candidateID int) (bool, error)
}

// SessionStore is the session store contract: the single source of truth
// for sessions and answer entries. Implementations must make each
// transition atomic (guarded read-modify-write), so a caller losing a
// transition race observes zero rows affected rather than a double
// transition. The pgx implementation lives in internal/repository.
type SessionStore interface {
	GetByID(ctx context.Context, sessionID uuid.UUID) (*model.ExamSession, error)
	GetLatestByCandidateAndPaper(ctx context.Context, candidateID int, paperID uuid.UUID) (*model.ExamSession, error)
	CreateWithEntries(ctx context.Context, s *model.ExamSession, entries []model.AnswerEntry) error
	ListEntries(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerEntry, error)
	SaveAnswer(ctx context.Context, sessionID, questionID uuid.UUID, answer string, at time.Time) (bool, error)
	MarkEnded(ctx context.Context, sessionID uuid.UUID, status model.SessionStatus, endedAt time.Time, submittedAt *time.Time) (bool, error)
	MarkCompleted(ctx context.Context, sessionID uuid.UUID) (bool, error)
	GradeEntryOnce(ctx context.Context, sessionID, questionID uuid.UUID, score float64, isCorrect bool, gradedAt time.Time) (bool, error)
	RecordSubjectiveGrade(ctx context.Context, sessionID, questionID uuid.UUID, score float64, graderID int, comment *string, gradedAt time.Time) (bool, error)
	UpdateAggregates(ctx context.Context, s *model.ExamSession) error
	UpdateRemainingTime(ctx context.Context, sessionID uuid.UUID, seconds int) error
	ListByCandidate(ctx context.Context, candidateID int, status *model.SessionStatus) ([]model.ExamSession, error)
	ListByPaper(ctx context.Context, paperID uuid.UUID, page, perPage int) ([]repository.SessionResult, int, error)
	StatsByPaper(ctx context.Context, paperID uuid.UUID) (*model.ExamStatistics, error)
}
