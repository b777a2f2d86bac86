package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firegate/examcore/internal/model"
	"github.com/firegate/examcore/internal/repository"
	"github.com/google/uuid"
)

// timeFormat is the layout used in candidate-facing window messages.
const timeFormat = "2006-01-02 15:04"

// EligibilityValidator decides whether a candidate may start or resume a
// session on a paper. It is a pure decision component: it never writes,
// so it is safe to call repeatedly.
type EligibilityValidator struct {
	papers   PaperResolver
	sessions SessionStore
}

// NewEligibilityValidator creates a new EligibilityValidator.
func NewEligibilityValidator(papers PaperResolver, sessions SessionStore) *EligibilityValidator {
	return &EligibilityValidator{papers: papers, sessions: sessions}
}

// Validate evaluates the eligibility rules in order; the first failing
// rule wins. It returns the decision together with the resolved paper
// snapshot so callers do not resolve it twice. An in-progress prior
// session short-circuits the exam window rules: such a session is always
// resumable, its end is governed by timeout detection rather than by the
// window.
func (v *EligibilityValidator) Validate(ctx context.Context, candidateID int, paperID uuid.UUID) (*model.EligibilityDecision, *model.ExamPaperSnapshot, error) {
	paper, err := v.papers.ResolveSnapshot(ctx, paperID)
	if err != nil {
		if errors.Is(err, repository.ErrPaperNotFound) {
			return model.Deny(model.ReasonPaperNotFound, "paper does not exist"), nil, nil
		}
		return nil, nil, fmt.Errorf("resolve paper: %w", err)
	}

	if !paper.Published() {
		return model.Deny(model.ReasonPaperNotPublished, "paper is not published"), paper, nil
	}

	prior, err := v.sessions.GetLatestByCandidateAndPaper(ctx, candidateID, paperID)
	if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, nil, fmt.Errorf("resolve prior session: %w", err)
	}

	if prior != nil && prior.Status == model.SessionStatusInProgress {
		return model.AllowResume(prior), paper, nil
	}

	now := time.Now()
	if paper.StartTime != nil && now.Before(*paper.StartTime) {
		return model.Deny(model.ReasonExamNotStarted,
			fmt.Sprintf("exam has not started yet, it opens at %s", paper.StartTime.Format(timeFormat))), paper, nil
	}
	if paper.EndTime != nil && now.After(*paper.EndTime) {
		return model.Deny(model.ReasonExamEnded,
			fmt.Sprintf("exam has ended, it closed at %s", paper.EndTime.Format(timeFormat))), paper, nil
	}

	if prior != nil && !paper.AllowRetake {
		return model.Deny(model.ReasonRetakeNotAllowed, "retake is not allowed for this paper"), paper, nil
	}

	return model.Allow(), paper, nil
}
