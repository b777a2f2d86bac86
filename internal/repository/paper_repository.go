package repository

import (
	"context"
	"errors"

	"github.com/firegate/examcore/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPaperNotFound is returned when a paper id does not resolve.
var ErrPaperNotFound = errors.New("paper not found")

// PaperRepository resolves read-only paper snapshots. Paper authoring is
// owned by an external service; this repository never writes.
type PaperRepository struct {
	pool *pgxpool.Pool
}

// NewPaperRepository creates a new PaperRepository.
func NewPaperRepository(pool *pgxpool.Pool) *PaperRepository {
	return &PaperRepository{pool: pool}
}

// GetSnapshot retrieves a paper with its ordered question references.
func (r *PaperRepository) GetSnapshot(ctx context.Context, paperID uuid.UUID) (*model.ExamPaperSnapshot, error) {
	p := &model.ExamPaperSnapshot{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, duration_minutes, start_time, end_time,
		        is_published, status, allow_retake, pass_score, total_score
		 FROM exam_papers
		 WHERE id = $1`, paperID,
	).Scan(&p.ID, &p.Title, &p.DurationMinutes, &p.StartTime, &p.EndTime,
		&p.IsPublished, &p.Status, &p.AllowRetake, &p.PassScore, &p.TotalScore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT question_id, kind, correct_answer, points, order_num
		 FROM paper_questions
		 WHERE paper_id = $1
		 ORDER BY order_num ASC`, paperID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q model.PaperQuestion
		if err := rows.Scan(&q.QuestionID, &q.Kind, &q.CorrectAnswer, &q.Points, &q.OrderNum); err != nil {
			return nil, err
		}
		p.Questions = append(p.Questions, q)
	}
	return p, rows.Err()
}
