package handler

import (
	"errors"
	"net/http"

	"github.com/firegate/examcore/internal/middleware"
	"github.com/firegate/examcore/internal/model"
	"github.com/firegate/examcore/internal/repository"
	"github.com/firegate/examcore/internal/response"
	"github.com/firegate/examcore/internal/service"
	"github.com/firegate/examcore/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler handles candidate-facing endpoints (taking an exam).
type SessionHandler struct {
	sessionService *service.ExamSessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.ExamSessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// StartExam godoc
// POST /api/v1/candidate/papers/:paper_id/start
// Validates eligibility and starts a new session, or resumes the
// candidate's in-progress one.
func (h *SessionHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	paperID, err := uuid.Parse(c.Param("paper_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.sessionService.StartOrResume(c.Request.Context(), claims.UserID, paperID)
	if err != nil {
		failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// GetSession godoc
// GET /api/v1/candidate/sessions/:session_id
// Returns the session with its answers. Covers page reload: the frontend
// recovers the answered questions and current status from here.
func (h *SessionHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	view, ok := h.ownedSession(c, claims.UserID)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, view)
}

// SaveAnswer godoc
// PUT /api/v1/candidate/sessions/:session_id/answers/:question_id
// Stores the candidate's answer for one question. Never grades.
func (h *SessionHandler) SaveAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if !h.verifyOwner(c, sessionID, claims.UserID) {
		return
	}

	if err := h.sessionService.SaveAnswer(c.Request.Context(), sessionID, questionID, req.Answer); err != nil {
		failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// SubmitExam godoc
// POST /api/v1/candidate/sessions/:session_id/submit
// Ends the session and grades the objective answers.
func (h *SessionHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if !h.verifyOwner(c, sessionID, claims.UserID) {
		return
	}

	session, err := h.sessionService.Submit(c.Request.Context(), sessionID)
	if err != nil {
		failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// UpdateRemainingTime godoc
// PUT /api/v1/candidate/sessions/:session_id/remaining-time
// Syncs the client-side countdown. Advisory only.
func (h *SessionHandler) UpdateRemainingTime(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateRemainingTimeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if !h.verifyOwner(c, sessionID, claims.UserID) {
		return
	}

	if err := h.sessionService.UpdateRemainingTime(c.Request.Context(), sessionID, req.RemainingSeconds); err != nil {
		failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"synced": true})
}

// GetHistory godoc
// GET /api/v1/candidate/sessions?status=GRADED
// Returns the candidate's sessions, newest first.
func (h *SessionHandler) GetHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var status *model.SessionStatus
	if raw := c.Query("status"); raw != "" {
		s := model.SessionStatus(raw)
		status = &s
	}

	sessions, err := h.sessionService.ListByCandidate(c.Request.Context(), claims.UserID, status)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// ownedSession loads the session view and enforces ownership. It writes
// the error response itself when the second return value is false.
func (h *SessionHandler) ownedSession(c *gin.Context, candidateID int) (*model.SessionView, bool) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	view, err := h.sessionService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		failSessionError(c, err)
		return nil, false
	}

	if view.Session.CandidateID != candidateID {
		// Do not leak whether the session exists.
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return nil, false
	}

	return view, true
}

// verifyOwner checks that the session belongs to the candidate before a
// mutating call. Prevents one candidate acting on another's session.
func (h *SessionHandler) verifyOwner(c *gin.Context, sessionID uuid.UUID, candidateID int) bool {
	view, err := h.sessionService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		failSessionError(c, err)
		return false
	}
	if view.Session.CandidateID != candidateID {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return false
	}
	return true
}

// failSessionError maps domain errors to API error codes.
func failSessionError(c *gin.Context, err error) {
	var eligErr *service.EligibilityError
	if errors.As(err, &eligErr) {
		status := http.StatusForbidden
		if eligErr.Decision.Reason == model.ReasonPaperNotFound {
			status = http.StatusNotFound
		}
		response.FailWithMessage(c, status, eligibilityCode(eligErr.Decision.Reason), eligErr.Decision.Message)
		return
	}

	switch {
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrPaperNotFound),
		errors.Is(err, service.ErrCandidateNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrWrongState):
		response.Fail(c, http.StatusConflict, response.ErrWrongState)
	case errors.Is(err, service.ErrNotGraded):
		response.Fail(c, http.StatusConflict, response.ErrNotGraded)
	case errors.Is(err, service.ErrAnswerNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAnswerNotFound)
	case errors.Is(err, service.ErrObjectiveQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrObjectiveQuestion)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func eligibilityCode(reason model.EligibilityReason) response.ErrCode {
	switch reason {
	case model.ReasonPaperNotFound:
		return response.ErrPaperNotFound
	case model.ReasonPaperNotPublished:
		return response.ErrPaperNotPublished
	case model.ReasonExamNotStarted:
		return response.ErrExamNotStarted
	case model.ReasonExamEnded:
		return response.ErrExamEnded
	case model.ReasonRetakeNotAllowed:
		return response.ErrRetakeNotAllowed
	default:
		return response.ErrForbidden
	}
}
