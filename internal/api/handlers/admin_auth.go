package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playpool/pong3d/internal/admin"
)

// AdminAuthMiddleware authenticates operators by the X-Admin-User and
// X-Admin-Token headers
func AdminAuthMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.GetHeader("X-Admin-User"))
		token := strings.TrimSpace(c.GetHeader("X-Admin-Token"))
		if username == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if db == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Admin unavailable"})
			return
		}

		acc, err := admin.ValidateAdmin(db, username, token, c.ClientIP())
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, admin.ErrIPNotAllowed) {
				status = http.StatusForbidden
			} else if !errors.Is(err, admin.ErrAccountNotFound) && !errors.Is(err, admin.ErrInvalidToken) {
				status = http.StatusInternalServerError
			}
			admin.LogAdminAction(db, username, c.ClientIP(), c.FullPath(), "auth", nil, false)
			c.AbortWithStatusJSON(status, gin.H{"error": "Invalid credentials"})
			return
		}

		c.Set("admin_username", acc.Username)
		c.Next()
	}
}
