package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playpool/pong3d/internal/admin"
	"github.com/playpool/pong3d/internal/config"
	"github.com/playpool/pong3d/internal/game"
)

// GetAdminRuntimeConfig returns all runtime config entries
func GetAdminRuntimeConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		configs, err := admin.GetAllRuntimeConfig(db)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch runtime config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch config"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"configs": configs})
	}
}

// UpdateAdminRuntimeConfig updates a single runtime config value. New matches
// pick it up; running ones keep their settings.
func UpdateAdminRuntimeConfig(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminUsername := c.GetString("admin_username")
		key := c.Param("key")
		route := "/api/v1/admin/config/" + key

		var req struct {
			Value string `json:"value" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value is required"})
			return
		}

		details := map[string]interface{}{"key": key, "value": req.Value}
		defaults, err := admin.UpdateRuntimeConfigValue(db, key, req.Value, adminUsername, game.SettingsFromConfig(cfg))
		if err != nil {
			admin.LogAdminAction(db, adminUsername, c.ClientIP(), route, "update_config", details, false)
			switch {
			case errors.Is(err, admin.ErrUnknownConfigKey):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, admin.ErrInvalidConfigValue):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				log.Printf("[ADMIN] Failed to update config %s: %v", key, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update config"})
			}
			return
		}

		if err := game.Manager.SetDefaults(defaults); err != nil {
			log.Printf("[ADMIN] Warning: failed to apply new defaults: %v", err)
		}

		log.Printf("[ADMIN] %s set %s=%s", adminUsername, key, req.Value)
		admin.LogAdminAction(db, adminUsername, c.ClientIP(), route, "update_config", details, true)
		c.JSON(http.StatusOK, gin.H{"ok": true, "defaults": defaults})
	}
}
