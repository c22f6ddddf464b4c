package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playpool/pong3d/internal/admin"
	"github.com/playpool/pong3d/internal/game"
	"github.com/samber/lo"
)

// GetAdminAuditLogs returns paginated audit log entries
func GetAdminAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		limit = lo.Clamp(limit, 1, 200)
		offset = lo.Max([]int{offset, 0})

		logs, err := admin.GetAdminAuditLogs(db, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
			return
		}

		// Viewing the audit log is not itself audited
		c.JSON(http.StatusOK, gin.H{"logs": logs, "limit": limit, "offset": offset})
	}
}

// GetAdminSessions lists the live matches with their latest phase and score
func GetAdminSessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		ids := game.Manager.ActiveSessionIDs()
		sessions := lo.FilterMap(ids, func(id string, _ int) (gin.H, bool) {
			sess, err := game.Manager.GetSession(id)
			if err != nil {
				return nil, false
			}
			snap := sess.Loop().LastSnapshot()
			return gin.H{
				"match_id":      sess.ID,
				"created_at":    sess.CreatedAt,
				"last_activity": sess.LastActivity(),
				"phase":         snap.Phase,
				"score":         snap.Score,
			}, true
		})
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
	}
}
