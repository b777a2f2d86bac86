package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firegate/examcore/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSessionNotFound is returned when a session id does not resolve.
var ErrSessionNotFound = errors.New("session not found")

// SessionResult combines candidate data with session details for the
// admin listing endpoint.
type SessionResult struct {
	SessionID   uuid.UUID           `json:"session_id"`
	CandidateID int                 `json:"candidate_id"`
	Name        string              `json:"name"`
	Username    string              `json:"username"`
	Status      model.SessionStatus `json:"status"`
	TotalScore  float64             `json:"total_score"`
	IsPassed    bool                `json:"is_passed"`
	StartedAt   time.Time           `json:"started_at"`
	EndedAt     *time.Time          `json:"ended_at,omitempty"`
}

const sessionColumns = `id, candidate_id, paper_id, created_at, started_at, ended_at,
	submitted_at, graded_at, status, remaining_seconds, total_count, correct_count,
	objective_score, subjective_score, total_score, is_passed, grader_id`

// ExamSessionRepository is the session store: the single owner of
// persisted sessions and answer entries. Every state transition goes
// through one guarded UPDATE so concurrent callers cannot double-apply it.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.CandidateID, &s.PaperID, &s.CreatedAt, &s.StartedAt,
		&s.EndedAt, &s.SubmittedAt, &s.GradedAt, &s.Status, &s.RemainingSeconds,
		&s.TotalCount, &s.CorrectCount, &s.ObjectiveScore, &s.SubjectiveScore,
		&s.TotalScore, &s.IsPassed, &s.GraderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session by id.
func (r *ExamSessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, sessionID))
}

// GetLatestByCandidateAndPaper retrieves the most recent session for a
// candidate-paper pair, or ErrSessionNotFound when none exists.
func (r *ExamSessionRepository) GetLatestByCandidateAndPaper(ctx context.Context, candidateID int, paperID uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE candidate_id = $1 AND paper_id = $2
		 ORDER BY created_at DESC
		 LIMIT 1`, candidateID, paperID))
}

// CreateWithEntries inserts a session and its full answer entry set in one
// transaction, so a session is never observable without its entries.
func (r *ExamSessionRepository) CreateWithEntries(ctx context.Context, s *model.ExamSession, entries []model.AnswerEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exam_sessions
		   (candidate_id, paper_id, started_at, status, remaining_seconds, total_count)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.CandidateID, s.PaperID, s.StartedAt, s.Status, s.RemainingSeconds, s.TotalCount,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range entries {
		entries[i].SessionID = s.ID
		batch.Queue(
			`INSERT INTO answer_entries (session_id, question_id, order_num, score, is_correct, is_graded)
			 VALUES ($1, $2, $3, 0, FALSE, FALSE)`,
			s.ID, entries[i].QuestionID, i,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert answer entries: %w", err)
	}

	return tx.Commit(ctx)
}

// ListEntries retrieves a session's answer entries in paper question order.
func (r *ExamSessionRepository) ListEntries(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, question_id, submitted_answer, answered_at,
		        score, is_correct, is_graded, graded_at, grader_id, comment
		 FROM answer_entries
		 WHERE session_id = $1
		 ORDER BY order_num ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.AnswerEntry
	for rows.Next() {
		var e model.AnswerEntry
		if err := rows.Scan(&e.SessionID, &e.QuestionID, &e.SubmittedAnswer, &e.AnsweredAt,
			&e.Score, &e.IsCorrect, &e.IsGraded, &e.GradedAt, &e.GraderID, &e.Comment); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveAnswer updates the submitted answer of an existing entry. Returns
// false when the (session, question) pair does not exist or the session
// is no longer in progress. The status condition holds even when another
// process finalized the session between this caller's read and write.
func (r *ExamSessionRepository) SaveAnswer(ctx context.Context, sessionID, questionID uuid.UUID, answer string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE answer_entries
		 SET submitted_answer = $1, answered_at = $2
		 WHERE session_id = $3 AND question_id = $4
		   AND EXISTS (
		     SELECT 1 FROM exam_sessions WHERE id = $3 AND status = $5
		   )`,
		answer, at, sessionID, questionID, model.SessionStatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkEnded moves an in-progress session to Submitted or Timeout. The
// status guard makes the transition exactly-once: a concurrent caller
// that lost the race sees zero rows affected and must treat the
// transition as already applied.
func (r *ExamSessionRepository) MarkEnded(ctx context.Context, sessionID uuid.UUID, status model.SessionStatus, endedAt time.Time, submittedAt *time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, ended_at = $2, submitted_at = $3
		 WHERE id = $4 AND status = $5`,
		status, endedAt, submittedAt, sessionID, model.SessionStatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCompleted moves a graded session to the administrative Completed
// state. Returns false when the session is not currently Graded.
func (r *ExamSessionRepository) MarkCompleted(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1
		 WHERE id = $2 AND status = $3`,
		model.SessionStatusCompleted, sessionID, model.SessionStatusGraded)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GradeEntryOnce writes an automatic grade. The is_graded guard makes a
// second grading attempt a no-op instead of a silent overwrite.
func (r *ExamSessionRepository) GradeEntryOnce(ctx context.Context, sessionID, questionID uuid.UUID, score float64, isCorrect bool, gradedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE answer_entries
		 SET score = $1, is_correct = $2, is_graded = TRUE, graded_at = $3
		 WHERE session_id = $4 AND question_id = $5 AND is_graded = FALSE`,
		score, isCorrect, gradedAt, sessionID, questionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RecordSubjectiveGrade writes a human grader's score. Unlike automatic
// grading this may overwrite an earlier grade, so graders can correct
// their own mistakes.
func (r *ExamSessionRepository) RecordSubjectiveGrade(ctx context.Context, sessionID, questionID uuid.UUID, score float64, graderID int, comment *string, gradedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE answer_entries
		 SET score = $1, is_correct = $2, is_graded = TRUE, graded_at = $3,
		     grader_id = $4, comment = $5
		 WHERE session_id = $6 AND question_id = $7`,
		score, score > 0, gradedAt, graderID, comment, sessionID, questionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateAggregates persists the recomputed score totals and, when
// grading finished, the Graded status with its pass verdict.
func (r *ExamSessionRepository) UpdateAggregates(ctx context.Context, s *model.ExamSession) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET correct_count = $1, objective_score = $2, subjective_score = $3,
		     total_score = $4, status = $5, graded_at = $6, is_passed = $7, grader_id = $8
		 WHERE id = $9`,
		s.CorrectCount, s.ObjectiveScore, s.SubjectiveScore,
		s.TotalScore, s.Status, s.GradedAt, s.IsPassed, s.GraderID, s.ID)
	return err
}

// UpdateRemainingTime stores the advisory client-reported countdown.
func (r *ExamSessionRepository) UpdateRemainingTime(ctx context.Context, sessionID uuid.UUID, seconds int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET remaining_seconds = $1 WHERE id = $2`,
		seconds, sessionID)
	return err
}

// ListByCandidate retrieves a candidate's sessions, newest first,
// optionally filtered by status.
func (r *ExamSessionRepository) ListByCandidate(ctx context.Context, candidateID int, status *model.SessionStatus) ([]model.ExamSession, error) {
	query := `SELECT ` + sessionColumns + `
		 FROM exam_sessions
		 WHERE candidate_id = $1`
	args := []any{candidateID}
	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// ListExpired returns the ids of in-progress sessions whose allowed
// duration elapsed before the cutoff. Used by the sweep worker; lazy
// detection on access remains authoritative.
func (r *ExamSessionRepository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id
		 FROM exam_sessions s
		 JOIN exam_papers p ON s.paper_id = p.id
		 WHERE s.status = $1
		   AND s.started_at + make_interval(mins => p.duration_minutes) <= $2
		 LIMIT $3`,
		model.SessionStatusInProgress, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByPaper retrieves paginated session results for a paper with
// candidate details.
func (r *ExamSessionRepository) ListByPaper(ctx context.Context, paperID uuid.UUID, page, perPage int) ([]SessionResult, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions WHERE paper_id = $1`, paperID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, c.id, c.name, c.username,
		        s.status, s.total_score, s.is_passed, s.started_at, s.ended_at
		 FROM exam_sessions s
		 JOIN candidates c ON s.candidate_id = c.id
		 WHERE s.paper_id = $1
		 ORDER BY s.created_at DESC
		 LIMIT $2 OFFSET $3`, paperID, perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []SessionResult
	for rows.Next() {
		var res SessionResult
		if err := rows.Scan(&res.SessionID, &res.CandidateID, &res.Name, &res.Username,
			&res.Status, &res.TotalScore, &res.IsPassed, &res.StartedAt, &res.EndedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// StatsByPaper aggregates result statistics for a paper. Completed means
// Graded or Completed; averages are over completed sessions only.
func (r *ExamSessionRepository) StatsByPaper(ctx context.Context, paperID uuid.UUID) (*model.ExamStatistics, error) {
	stats := &model.ExamStatistics{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status IN ($2, $3)),
		        COUNT(*) FILTER (WHERE status IN ($2, $3) AND is_passed),
		        COALESCE(AVG(total_score) FILTER (WHERE status IN ($2, $3)), 0),
		        COALESCE(MAX(total_score) FILTER (WHERE status IN ($2, $3)), 0),
		        COALESCE(MIN(total_score) FILTER (WHERE status IN ($2, $3)), 0)
		 FROM exam_sessions
		 WHERE paper_id = $1`,
		paperID, model.SessionStatusGraded, model.SessionStatusCompleted,
	).Scan(&stats.TotalParticipants, &stats.CompletedCount, &stats.PassedCount,
		&stats.AverageScore, &stats.MaxScore, &stats.MinScore)
	if err != nil {
		return nil, err
	}

	if stats.CompletedCount > 0 {
		stats.PassRate = float64(stats.PassedCount) / float64(stats.CompletedCount) * 100
	}
	if stats.TotalParticipants > 0 {
		stats.CompletionRate = float64(stats.CompletedCount) / float64(stats.TotalParticipants) * 100
	}
	return stats, nil
}
