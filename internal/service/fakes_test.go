package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/firegate/examcore/internal/model"
	"github.com/firegate/examcore/internal/repository"
	"github.com/google/uuid"
)

// fakePapers is an in-memory PaperResolver.
type fakePapers struct {
	papers map[uuid.UUID]*model.ExamPaperSnapshot
}

func newFakePapers(papers ...*model.ExamPaperSnapshot) *fakePapers {
	f := &fakePapers{papers: make(map[uuid.UUID]*model.ExamPaperSnapshot)}
	for _, p := range papers {
		f.papers[p.ID] = p
	}
	return f
}

func (f *fakePapers) ResolveSnapshot(_ context.Context, paperID uuid.UUID) (*model.ExamPaperSnapshot, error) {
	p, ok := f.papers[paperID]
	if !ok {
		return nil, repository.ErrPaperNotFound
	}
	return p, nil
}

// fakeCandidates is an in-memory CandidateStore.
type fakeCandidates struct {
	ids map[int]bool
}

func newFakeCandidates(ids ...int) *fakeCandidates {
	f := &fakeCandidates{ids: make(map[int]bool)}
	for _, id := range ids {
		f.ids[id] = true
	}
	return f
}

func (f *fakeCandidates) Exists(_ context.Context, candidateID int) (bool, error) {
	return f.ids[candidateID], nil
}

// fakeStore is an in-memory SessionStore with the same guarded-update
// semantics as the pgx implementation.
type fakeStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.ExamSession
	entries  map[uuid.UUID][]model.AnswerEntry

	// endedTransitions counts successful MarkEnded applications, so tests
	// can assert the transition happened exactly once under contention.
	endedTransitions int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[uuid.UUID]*model.ExamSession),
		entries:  make(map[uuid.UUID][]model.AnswerEntry),
	}
}

func (f *fakeStore) GetByID(_ context.Context, sessionID uuid.UUID) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) GetLatestByCandidateAndPaper(_ context.Context, candidateID int, paperID uuid.UUID) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.ExamSession
	for _, s := range f.sessions {
		if s.CandidateID != candidateID || s.PaperID != paperID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, repository.ErrSessionNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeStore) CreateWithEntries(_ context.Context, s *model.ExamSession, entries []model.AnswerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	copied := *s
	f.sessions[s.ID] = &copied
	stored := make([]model.AnswerEntry, len(entries))
	copy(stored, entries)
	for i := range stored {
		stored[i].SessionID = s.ID
	}
	f.entries[s.ID] = stored
	return nil
}

func (f *fakeStore) ListEntries(_ context.Context, sessionID uuid.UUID) ([]model.AnswerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]model.AnswerEntry, len(f.entries[sessionID]))
	copy(entries, f.entries[sessionID])
	return entries, nil
}

func (f *fakeStore) SaveAnswer(_ context.Context, sessionID, questionID uuid.UUID, answer string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusInProgress {
		return false, nil
	}
	entries := f.entries[sessionID]
	for i := range entries {
		if entries[i].QuestionID == questionID {
			a := answer
			t := at
			entries[i].SubmittedAnswer = &a
			entries[i].AnsweredAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) MarkEnded(_ context.Context, sessionID uuid.UUID, status model.SessionStatus, endedAt time.Time, submittedAt *time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusInProgress {
		return false, nil
	}
	s.Status = status
	s.EndedAt = &endedAt
	s.SubmittedAt = submittedAt
	f.endedTransitions++
	return true, nil
}

func (f *fakeStore) MarkCompleted(_ context.Context, sessionID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusGraded {
		return false, nil
	}
	s.Status = model.SessionStatusCompleted
	return true, nil
}

func (f *fakeStore) GradeEntryOnce(_ context.Context, sessionID, questionID uuid.UUID, score float64, isCorrect bool, gradedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.entries[sessionID]
	for i := range entries {
		if entries[i].QuestionID == questionID {
			if entries[i].IsGraded {
				return false, nil
			}
			t := gradedAt
			entries[i].Score = score
			entries[i].IsCorrect = isCorrect
			entries[i].IsGraded = true
			entries[i].GradedAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) RecordSubjectiveGrade(_ context.Context, sessionID, questionID uuid.UUID, score float64, graderID int, comment *string, gradedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.entries[sessionID]
	for i := range entries {
		if entries[i].QuestionID == questionID {
			t := gradedAt
			g := graderID
			entries[i].Score = score
			entries[i].IsCorrect = score > 0
			entries[i].IsGraded = true
			entries[i].GradedAt = &t
			entries[i].GraderID = &g
			entries[i].Comment = comment
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateAggregates(_ context.Context, s *model.ExamSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[s.ID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	stored.CorrectCount = s.CorrectCount
	stored.ObjectiveScore = s.ObjectiveScore
	stored.SubjectiveScore = s.SubjectiveScore
	stored.TotalScore = s.TotalScore
	stored.Status = s.Status
	stored.GradedAt = s.GradedAt
	stored.IsPassed = s.IsPassed
	stored.GraderID = s.GraderID
	return nil
}

func (f *fakeStore) UpdateRemainingTime(_ context.Context, sessionID uuid.UUID, seconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok {
		s.RemainingSeconds = seconds
	}
	return nil
}

func (f *fakeStore) ListByCandidate(_ context.Context, candidateID int, status *model.SessionStatus) ([]model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sessions []model.ExamSession
	for _, s := range f.sessions {
		if s.CandidateID != candidateID {
			continue
		}
		if status != nil && s.Status != *status {
			continue
		}
		sessions = append(sessions, *s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (f *fakeStore) ListByPaper(_ context.Context, paperID uuid.UUID, page, perPage int) ([]repository.SessionResult, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.SessionResult
	for _, s := range f.sessions {
		if s.PaperID != paperID {
			continue
		}
		results = append(results, repository.SessionResult{
			SessionID:   s.ID,
			CandidateID: s.CandidateID,
			Status:      s.Status,
			TotalScore:  s.TotalScore,
			IsPassed:    s.IsPassed,
			StartedAt:   s.StartedAt,
			EndedAt:     s.EndedAt,
		})
	}
	return results, len(results), nil
}

func (f *fakeStore) StatsByPaper(_ context.Context, paperID uuid.UUID) (*model.ExamStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &model.ExamStatistics{}
	first := true
	var sum float64
	for _, s := range f.sessions {
		if s.PaperID != paperID {
			continue
		}
		stats.TotalParticipants++
		if !s.Status.Finished() {
			continue
		}
		stats.CompletedCount++
		if s.IsPassed {
			stats.PassedCount++
		}
		sum += s.TotalScore
		if first || s.TotalScore > stats.MaxScore {
			stats.MaxScore = s.TotalScore
		}
		if first || s.TotalScore < stats.MinScore {
			stats.MinScore = s.TotalScore
		}
		first = false
	}
	if stats.CompletedCount > 0 {
		stats.AverageScore = sum / float64(stats.CompletedCount)
		stats.PassRate = float64(stats.PassedCount) / float64(stats.CompletedCount) * 100
	}
	if stats.TotalParticipants > 0 {
		stats.CompletionRate = float64(stats.CompletedCount) / float64(stats.TotalParticipants) * 100
	}
	return stats, nil
}
