package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/firegate/examcore/internal/config"
	"github.com/firegate/examcore/internal/model"
	"github.com/firegate/examcore/internal/repository"
	"github.com/firegate/examcore/internal/response"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// statsTTL bounds staleness of the cached per-paper statistics.
const statsTTL = 30 * time.Second

// ExamSessionService orchestrates the session lifecycle: eligibility,
// creation, answer saving, submission, lazy timeout detection, automatic
// grading and score aggregation. It is stateless between calls except
// through the session store, so multiple instances can run side by side.
type ExamSessionService struct {
	store      SessionStore
	papers     PaperResolver
	candidates CandidateStore
	validator  *EligibilityValidator
	locks      *sessionLocks
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(
	store SessionStore,
	papers PaperResolver,
	candidates CandidateStore,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		store:      store,
		papers:     papers,
		candidates: candidates,
		validator:  NewEligibilityValidator(papers, store),
		locks:      newSessionLocks(),
		rdb:        rdb,
		log:        log.With().Str("component", "exam_session_service").Logger(),
	}
}

// StartOrResume validates eligibility and either creates a fresh session
// with one answer entry per paper question, or resumes the candidate's
// in-progress session (running the timeout check first).
func (s *ExamSessionService) StartOrResume(ctx context.Context, candidateID int, paperID uuid.UUID) (*model.SessionView, error) {
	exists, err := s.candidates.Exists(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("resolve candidate: %w", err)
	}
	if !exists {
		return nil, ErrCandidateNotFound
	}

	decision, paper, err := s.validator.Validate(ctx, candidateID, paperID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &EligibilityError{Decision: decision}
	}

	if prior := decision.Resumable; prior != nil {
		return s.resume(ctx, prior, paper)
	}

	session := &model.ExamSession{
		CandidateID:      candidateID,
		PaperID:          paperID,
		StartedAt:        time.Now(),
		Status:           model.SessionStatusInProgress,
		RemainingSeconds: paper.DurationMinutes * 60,
		TotalCount:       len(paper.Questions),
	}
	entries := make([]model.AnswerEntry, len(paper.Questions))
	for i, q := range paper.Questions {
		entries[i] = model.AnswerEntry{QuestionID: q.QuestionID}
	}

	if err := s.store.CreateWithEntries(ctx, session, entries); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Int("candidate_id", candidateID).
		Str("paper_id", paperID.String()).
		Int("questions", len(entries)).
		Msg("Session started")

	return &model.SessionView{Session: session, Answers: entries}, nil
}

func (s *ExamSessionService) resume(ctx context.Context, session *model.ExamSession, paper *model.ExamPaperSnapshot) (*model.SessionView, error) {
	s.locks.Lock(session.ID)
	defer s.locks.Unlock(session.ID)

	session, err := s.checkTimeoutLocked(ctx, session.ID, paper)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.ListEntries(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list answer entries: %w", err)
	}
	return &model.SessionView{Session: session, Answers: entries}, nil
}

// GetSession returns a session with its answers, forcing the timeout
// transition first when the allowed duration has elapsed.
func (s *ExamSessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*model.SessionView, error) {
	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	paper, err := s.papers.ResolveSnapshot(ctx, session.PaperID)
	if err != nil {
		return nil, fmt.Errorf("resolve paper: %w", err)
	}

	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session, err = s.checkTimeoutLocked(ctx, sessionID, paper)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.ListEntries(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answer entries: %w", err)
	}
	return &model.SessionView{Session: session, Answers: entries}, nil
}

// SaveAnswer stores a candidate's answer for one question. Saving never
// grades; it is only legal while the session is in progress.
func (s *ExamSessionService) SaveAnswer(ctx context.Context, sessionID, questionID uuid.UUID, answer string) error {
	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	paper, err := s.papers.ResolveSnapshot(ctx, session.PaperID)
	if err != nil {
		return fmt.Errorf("resolve paper: %w", err)
	}

	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session, err = s.checkTimeoutLocked(ctx, sessionID, paper)
	if err != nil {
		return err
	}
	if session.Status != model.SessionStatusInProgress {
		return ErrWrongState
	}

	ok, err := s.store.SaveAnswer(ctx, sessionID, questionID, answer, time.Now())
	if err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	if !ok {
		// The store refuses the write when the session left the
		// in-progress state under another instance's lock.
		session, err = s.store.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status != model.SessionStatusInProgress {
			return ErrWrongState
		}
		return ErrAnswerNotFound
	}
	return nil
}

// Submit ends an in-progress session at the candidate's request and
// grades the objective answers immediately.
func (s *ExamSessionService) Submit(ctx context.Context, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	paper, err := s.papers.ResolveSnapshot(ctx, session.PaperID)
	if err != nil {
		return nil, fmt.Errorf("resolve paper: %w", err)
	}

	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session, err = s.checkTimeoutLocked(ctx, sessionID, paper)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, ErrWrongState
	}

	now := time.Now()
	ok, err := s.store.MarkEnded(ctx, sessionID, model.SessionStatusSubmitted, now, &now)
	if err != nil {
		return nil, fmt.Errorf("mark submitted: %w", err)
	}
	if !ok {
		// Lost the transition race; the winner grades.
		return nil, ErrWrongState
	}

	if err := s.gradeLocked(ctx, sessionID, paper, nil); err != nil {
		return nil, err
	}

	s.log.Info().Str("session_id", sessionID.String()).Msg("Session submitted")
	return s.store.GetByID(ctx, sessionID)
}

// UpdateRemainingTime stores the client-reported countdown. The value is
// advisory only; timeout detection always recomputes from started-at.
func (s *ExamSessionService) UpdateRemainingTime(ctx context.Context, sessionID uuid.UUID, seconds int) error {
	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	paper, err := s.papers.ResolveSnapshot(ctx, session.PaperID)
	if err != nil {
		return fmt.Errorf("resolve paper: %w", err)
	}

	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session, err = s.checkTimeoutLocked(ctx, sessionID, paper)
	if err != nil {
		return err
	}
	if session.Status != model.SessionStatusInProgress {
		return ErrWrongState
	}

	return s.store.UpdateRemainingTime(ctx, sessionID, seconds)
}

// RecordSubjectiveScore applies a human grader's score to a subjective
// answer and re-runs aggregation. Once every entry is graded the session
// moves to Graded with its pass verdict.
func (s *ExamSessionService) RecordSubjectiveScore(ctx context.Context, sessionID, questionID uuid.UUID, score float64, graderID int, comment *string) (*model.ExamSession, error) {
	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusInProgress {
		return nil, ErrWrongState
	}

	paper, err := s.papers.ResolveSnapshot(ctx, session.PaperID)
	if err != nil {
		return nil, fmt.Errorf("resolve paper: %w", err)
	}

	question := paper.Question(questionID)
	if question == nil {
		return nil, ErrAnswerNotFound
	}
	if question.Kind.Objective() {
		return nil, ErrObjectiveQuestion
	}

	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	ok, err := s.store.RecordSubjectiveGrade(ctx, sessionID, questionID, score, graderID, comment, time.Now())
	if err != nil {
		return nil, fmt.Errorf("record subjective grade: %w", err)
	}
	if !ok {
		return nil, ErrAnswerNotFound
	}

	if err := s.aggregateLocked(ctx, sessionID, paper, &graderID); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Str("question_id", questionID.String()).
		Int("grader_id", graderID).
		Msg("Subjective score recorded")

	return s.store.GetByID(ctx, sessionID)
}

// CompleteSession applies the administrative closure to a graded session.
func (s *ExamSessionService) CompleteSession(ctx context.Context, sessionID uuid.UUID) (*model.ExamSession, error) {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	ok, err := s.store.MarkCompleted(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}
	if !ok {
		// Either the session does not exist or it has not been graded.
		if _, err := s.store.GetByID(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, ErrNotGraded
	}
	return s.store.GetByID(ctx, sessionID)
}

// ListByCandidate returns a candidate's sessions, newest first.
func (s *ExamSessionService) ListByCandidate(ctx context.Context, candidateID int, status *model.SessionStatus) ([]model.ExamSession, error) {
	sessions, err := s.store.ListByCandidate(ctx, candidateID, status)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []model.ExamSession{}
	}
	return sessions, nil
}

// ListByPaper returns paginated session results for a paper.
func (s *ExamSessionService) ListByPaper(ctx context.Context, paperID uuid.UUID, page, perPage int) ([]repository.SessionResult, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	results, total, err := s.store.ListByPaper(ctx, paperID, page, perPage)
	if err != nil {
		return nil, nil, err
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return results, pagination, nil
}

// GetStatistics returns the per-paper result summary, cached briefly in
// Redis because admin dashboards poll it.
func (s *ExamSessionService) GetStatistics(ctx context.Context, paperID uuid.UUID) (*model.ExamStatistics, error) {
	key := config.CacheKey.PaperStatsKey(paperID.String())

	if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var stats model.ExamStatistics
		if err := json.Unmarshal(data, &stats); err == nil {
			return &stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("paper_id", paperID.String()).Msg("Stats cache read failed")
	}

	stats, err := s.store.StatsByPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = s.rdb.Set(ctx, key, payload, statsTTL).Err()
	}
	return stats, nil
}

// checkTimeoutLocked re-reads the session, forces the Timeout transition
// when the allowed duration has elapsed, and returns the stored state.
// The caller must hold the session lock; any session read taken before
// the lock is stale and must not feed status decisions. The store's
// status guard keeps the transition exactly-once: a caller losing the
// race simply re-reads the already-finalized state.
func (s *ExamSessionService) checkTimeoutLocked(ctx context.Context, sessionID uuid.UUID, paper *model.ExamPaperSnapshot) (*model.ExamSession, error) {
	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusInProgress {
		return session, nil
	}

	allowed := time.Duration(paper.DurationMinutes) * time.Minute
	if time.Since(session.StartedAt) < allowed {
		return session, nil
	}

	forced, err := s.store.MarkEnded(ctx, session.ID, model.SessionStatusTimeout, time.Now(), nil)
	if err != nil {
		return nil, fmt.Errorf("mark timeout: %w", err)
	}
	if forced {
		s.log.Info().
			Str("session_id", session.ID.String()).
			Time("started_at", session.StartedAt).
			Int("duration_minutes", paper.DurationMinutes).
			Msg("Session timed out")
		if err := s.gradeLocked(ctx, session.ID, paper, nil); err != nil {
			return nil, err
		}
	}

	return s.store.GetByID(ctx, session.ID)
}

// gradeLocked is the grading engine: it auto-grades every ungraded
// objective answer, then recomputes the aggregates. The caller must hold
// the session lock.
func (s *ExamSessionService) gradeLocked(ctx context.Context, sessionID uuid.UUID, paper *model.ExamPaperSnapshot, graderID *int) error {
	entries, err := s.store.ListEntries(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list answer entries: %w", err)
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsGraded {
			continue
		}
		question := paper.Question(entry.QuestionID)
		if question == nil || !question.Kind.Objective() {
			// Subjective entries wait for a human grader.
			continue
		}

		submitted := ""
		if entry.SubmittedAnswer != nil {
			submitted = *entry.SubmittedAnswer
		}
		correct := CompareAnswers(submitted, question.CorrectAnswer, question.Kind)
		score := 0.0
		if correct {
			score = question.Points
		}

		if _, err := s.store.GradeEntryOnce(ctx, sessionID, entry.QuestionID, score, correct, now); err != nil {
			return fmt.Errorf("grade answer: %w", err)
		}
	}

	return s.aggregateLocked(ctx, sessionID, paper, graderID)
}

// aggregateLocked is the score aggregator: it recomputes subtotals from
// the stored entries (never incrementally drifted) and promotes the
// session to Graded once every entry is graded. The caller must hold the
// session lock.
func (s *ExamSessionService) aggregateLocked(ctx context.Context, sessionID uuid.UUID, paper *model.ExamPaperSnapshot, graderID *int) error {
	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	entries, err := s.store.ListEntries(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list answer entries: %w", err)
	}

	var objective, subjective float64
	correctCount := 0
	allGraded := true
	for _, entry := range entries {
		if !entry.IsGraded {
			allGraded = false
			continue
		}
		question := paper.Question(entry.QuestionID)
		if question != nil && question.Kind.Objective() {
			objective += entry.Score
			if entry.IsCorrect {
				correctCount++
			}
		} else {
			subjective += entry.Score
		}
	}

	session.CorrectCount = correctCount
	session.ObjectiveScore = objective
	session.SubjectiveScore = subjective
	session.TotalScore = objective + subjective
	if graderID != nil {
		session.GraderID = graderID
	}

	if allGraded && session.Status.Ended() && session.Status != model.SessionStatusCompleted {
		if session.GradedAt == nil {
			now := time.Now()
			session.GradedAt = &now
		}
		session.Status = model.SessionStatusGraded

		threshold := paper.PassScore
		if threshold <= 0 {
			threshold = paper.TotalScore * 0.6
		}
		session.IsPassed = session.TotalScore >= threshold
	}

	if err := s.store.UpdateAggregates(ctx, session); err != nil {
		return fmt.Errorf("update aggregates: %w", err)
	}

	// Scores changed; drop the cached statistics for the paper.
	_ = s.rdb.Del(ctx, config.CacheKey.PaperStatsKey(session.PaperID.String())).Err()

	return nil
}
