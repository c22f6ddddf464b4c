package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playpool/pong3d/internal/api/handlers"
	"github.com/playpool/pong3d/internal/config"
	"github.com/playpool/pong3d/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	// No-cache middleware must come before any handler in development
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] Aggressive no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/config", handlers.GetConfig(cfg))

		// Match endpoints
		v1.POST("/match", handlers.CreateMatch(cfg))
		v1.GET("/match/:id", handlers.GetMatch())
		v1.GET("/match/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleMatchWebSocket())
		v1.GET("/matches/recent", handlers.GetRecentMatches())

		// Operator endpoints
		admin := v1.Group("/admin")
		admin.Use(handlers.AdminAuthMiddleware(db))
		{
			admin.GET("/config", handlers.GetAdminRuntimeConfig(db))
			admin.PUT("/config/:key", handlers.UpdateAdminRuntimeConfig(db, cfg))
			admin.GET("/audit", handlers.GetAdminAuditLogs(db))
			admin.GET("/sessions", handlers.GetAdminSessions())
		}
	}
}
