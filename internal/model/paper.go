package model

import (
	"time"

	"github.com/google/uuid"
)

// PaperStatus enumerates the lifecycle states of an exam paper.
type PaperStatus string

const (
	PaperStatusDraft     PaperStatus = "DRAFT"
	PaperStatusPublished PaperStatus = "PUBLISHED"
	PaperStatusClosed    PaperStatus = "CLOSED"
)

// ExamPaperSnapshot is the read-only view of a paper consumed by the
// session engine. Paper authoring and validation live in an external
// service; the engine only resolves snapshots by id.
type ExamPaperSnapshot struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	DurationMinutes int             `json:"duration_minutes"`
	StartTime       *time.Time      `json:"start_time,omitempty"`
	EndTime         *time.Time      `json:"end_time,omitempty"`
	IsPublished     bool            `json:"is_published"`
	Status          PaperStatus     `json:"status"`
	AllowRetake     bool            `json:"allow_retake"`
	PassScore       float64         `json:"pass_score"`
	TotalScore      float64         `json:"total_score"`
	Questions       []PaperQuestion `json:"questions"`
}

// Published reports whether the paper is open to candidates. Legacy rows
// carry only the status marker while newer rows set the boolean flag, so
// both must be honored.
func (p *ExamPaperSnapshot) Published() bool {
	return p.IsPublished || p.Status == PaperStatusPublished
}

// Question returns the paper question with the given id, or nil.
func (p *ExamPaperSnapshot) Question(questionID uuid.UUID) *PaperQuestion {
	for i := range p.Questions {
		if p.Questions[i].QuestionID == questionID {
			return &p.Questions[i]
		}
	}
	return nil
}

// PaperQuestion is one question reference inside a paper snapshot,
// carrying the point value assigned by the paper author. Snapshots are a
// server-side structure: handlers never serialize them to candidates, so
// the canonical answer travels with the snapshot (and its cache copy).
type PaperQuestion struct {
	QuestionID    uuid.UUID    `json:"question_id"`
	Kind          QuestionKind `json:"kind"`
	CorrectAnswer string       `json:"correct_answer"`
	Points        float64      `json:"points"`
	OrderNum      int          `json:"order_num"`
}
