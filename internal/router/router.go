package router

import (
	"net/http"
	"time"

	"github.com/firegate/examcore/internal/config"
	"github.com/firegate/examcore/internal/handler"
	"github.com/firegate/examcore/internal/middleware"
	"github.com/firegate/examcore/internal/response"
	"github.com/firegate/examcore/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session      *handler.SessionHandler
	AdminSession *handler.AdminSessionHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokenService *service.TokenService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Candidate Group (JWT) ──────────────────────────────────────
	candidateAPI := router.Group("/api/v1/candidate")
	candidateAPI.Use(middleware.RequireCandidateJWT(tokenService))
	{
		candidateAPI.POST("/papers/:paper_id/start", handlers.Session.StartExam)
		candidateAPI.GET("/sessions", handlers.Session.GetHistory)
		candidateAPI.GET("/sessions/:session_id", handlers.Session.GetSession)
		candidateAPI.PUT("/sessions/:session_id/answers/:question_id", handlers.Session.SaveAnswer)
		candidateAPI.POST("/sessions/:session_id/submit", handlers.Session.SubmitExam)
		candidateAPI.PUT("/sessions/:session_id/remaining-time", handlers.Session.UpdateRemainingTime)
	}

	// ─── 2. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(tokenService))
	{
		adminAPI.GET("/sessions/:session_id", handlers.AdminSession.GetSession)
		adminAPI.PUT("/sessions/:session_id/answers/:question_id/score", handlers.AdminSession.RecordSubjectiveScore)
		adminAPI.POST("/sessions/:session_id/complete", handlers.AdminSession.CompleteSession)
		adminAPI.GET("/papers/:paper_id/sessions", handlers.AdminSession.ListPaperSessions)
		adminAPI.GET("/papers/:paper_id/statistics", handlers.AdminSession.GetStatistics)
	}

	return router
}
