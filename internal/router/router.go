package router

import (
	"net/http"
	"time"

	"github.com/classpulse/classpulse-backend/internal/config"
	"github.com/classpulse/classpulse-backend/internal/handler"
	"github.com/classpulse/classpulse-backend/internal/middleware"
	"github.com/classpulse/classpulse-backend/internal/response"
	"github.com/classpulse/classpulse-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Sync         *handler.SyncHandler
	Notification *handler.NotificationHandler
	Course       *handler.CourseHandler
	File         *handler.FileHandler
	Setting      *handler.SettingHandler
	Alert        *handler.AlertHandler
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

	// ─── Auth Group (Public, Rate Limited) ─────────────────────────────
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware(middleware.ByClientIP))
	{
		auth.POST("/login", handlers.Auth.Login)
	}

	// ─── Portal API (JWT) ──────────────────────────────────────────────
	// Sync cycles fan out many upstream calls, so the trigger endpoint
	// carries its own per-user budget on top of the JWT requirement.
	syncLimiter := middleware.NewRateLimiter(10, time.Minute)
	api := router.Group("/api/v1")
	api.Use(middleware.RequireJWT(authService))
	{
		api.POST("/sync", syncLimiter.Middleware(middleware.ByUser), handlers.Sync.TriggerSync)
		api.GET("/statuses", handlers.Sync.Statuses)
		api.POST("/disconnect", handlers.Sync.Disconnect)
		api.POST("/app/foreground", handlers.Sync.Foreground)

		api.GET("/courses", handlers.Course.Courses)
		api.GET("/courses/:course_id/assignments", handlers.Course.Assignments)

		api.GET("/notifications", handlers.Notification.List)
		api.GET("/notifications/counts", handlers.Notification.Counts)
		api.POST("/notifications/:id/read", handlers.Notification.MarkRead)
		api.POST("/notifications/:id/dismiss", handlers.Notification.Dismiss)

		api.GET("/settings", handlers.Setting.Get)
		api.PUT("/settings", handlers.Setting.Update)

		api.GET("/files", handlers.File.List)
		api.GET("/files/search", handlers.File.Search)
		api.POST("/files/folder", handlers.File.CreateFolder)
		api.POST("/files/upload", handlers.File.Upload)
		api.POST("/files/:id/move", handlers.File.Move)
		api.POST("/files/:id/rename", handlers.File.Rename)
		api.DELETE("/files/:id", handlers.File.Delete)
	}

	// ─── Alert Stream (JWT) ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireJWT(authService))
	{
		ws.GET("/alerts", handlers.Alert.Stream)
	}

	return router
}
