package handler

import (
	"net/http"
	"strconv"

	"github.com/firegate/examcore/internal/middleware"
	"github.com/firegate/examcore/internal/model"
	"github.com/firegate/examcore/internal/response"
	"github.com/firegate/examcore/internal/service"
	"github.com/firegate/examcore/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminSessionHandler handles grading and result endpoints.
type AdminSessionHandler struct {
	sessionService *service.ExamSessionService
}

// NewAdminSessionHandler creates a new AdminSessionHandler.
func NewAdminSessionHandler(sessionService *service.ExamSessionService) *AdminSessionHandler {
	return &AdminSessionHandler{sessionService: sessionService}
}

// GetSession godoc
// GET /api/v1/admin/sessions/:session_id
// Returns a session with its answers for grading review.
func (h *AdminSessionHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.sessionService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// RecordSubjectiveScore godoc
// PUT /api/v1/admin/sessions/:session_id/answers/:question_id/score
// Applies a human grader's score to a subjective answer. Once every
// entry is graded the session moves to GRADED with its pass verdict.
func (h *AdminSessionHandler) RecordSubjectiveScore(c *gin.Context) {
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

	var req model.RecordSubjectiveScoreRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.RecordSubjectiveScore(c.Request.Context(), sessionID, questionID, req.Score, claims.UserID, req.Comment)
	if err != nil {
		failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// CompleteSession godoc
// POST /api/v1/admin/sessions/:session_id/complete
// Closes out a graded session.
func (h *AdminSessionHandler) CompleteSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.CompleteSession(c.Request.Context(), sessionID)
	if err != nil {
		failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// ListPaperSessions godoc
// GET /api/v1/admin/papers/:paper_id/sessions?page=1&per_page=10
// Returns paginated session results for a paper.
func (h *AdminSessionHandler) ListPaperSessions(c *gin.Context) {
	paperID, err := uuid.Parse(c.Param("paper_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	results, pagination, err := h.sessionService.ListByPaper(c.Request.Context(), paperID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"sessions": results}, pagination)
}

// GetStatistics godoc
// GET /api/v1/admin/papers/:paper_id/statistics
// Returns the derived result summary for a paper.
func (h *AdminSessionHandler) GetStatistics(c *gin.Context) {
	paperID, err := uuid.Parse(c.Param("paper_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	stats, err := h.sessionService.GetStatistics(c.Request.Context(), paperID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, stats)
}
