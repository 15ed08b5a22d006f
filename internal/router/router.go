package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gdhanush27/Form-Pulse/internal/config"
	"github.com/gdhanush27/Form-Pulse/internal/handler"
	"github.com/gdhanush27/Form-Pulse/internal/middleware"
	"github.com/gdhanush27/Form-Pulse/internal/response"
	"github.com/gdhanush27/Form-Pulse/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Portal *handler.PortalHandler
	Admin  *handler.AdminHandler
	WS     *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Admin-Key"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for session joins (30 per minute per IP). Keeps a
	// misbehaving client from hammering the upstream form fetch.
	joinLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Respondent Group (JWT) ─────────────────────────────────────
	formsAPI := router.Group("/api/v1/forms")
	formsAPI.Use(middleware.RequireRespondentJWT(authService))
	{
		formsAPI.POST("/:form_name/session", joinLimiter.Middleware(), handlers.Portal.JoinSession)
		formsAPI.GET("/:form_name/session", handlers.Portal.GetSession)
		formsAPI.POST("/:form_name/answers", handlers.Portal.Answer)
		formsAPI.POST("/:form_name/submit", handlers.Portal.Submit)
	}

	// ─── 2. WebSocket Group (Respondent WS Auth) ───────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireRespondentWSAuth(authService))
	{
		ws.GET("/forms/:form_name/stream", handlers.WS.SessionStream)
	}

	// ─── 3. Admin Group (API Key) ──────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminKey(authService))
	{
		adminAPI.GET("/status", handlers.Admin.Status)
		adminAPI.GET("/forms/:form_name/violations", handlers.Admin.ListViolations)
		adminAPI.GET("/forms/:form_name/submissions", handlers.Admin.ListSubmissions)
		adminAPI.GET("/forms/:form_name/submissions/:email", handlers.Admin.GetSubmission)
	}

	return router
}
