package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playpool/pong3d/internal/config"
	"github.com/playpool/pong3d/internal/game"
	"github.com/playpool/pong3d/internal/ws"
)

// CreateMatch hosts a new idle match and returns the token for its websocket
func CreateMatch(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Settings game.SettingsPatch `json:"settings"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
		}

		settings := req.Settings.Apply(game.Manager.DefaultSettings())
		sess, err := game.Manager.CreateSession(settings)
		if err != nil {
			switch {
			case errors.Is(err, game.ErrInvalidSettings):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, game.ErrTooManySessions):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server is full, try again shortly"})
			default:
				log.Printf("[API] CreateSession failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create match"})
			}
			return
		}

		ttl := time.Duration(cfg.SessionMaxMinutes) * time.Minute
		if ttl <= 0 {
			ttl = time.Hour
		}
		token, err := ws.IssueMatchToken(cfg.JWTSecret, sess.ID, ttl)
		if err != nil {
			log.Printf("[API] Failed to sign token for %s: %v", sess.ID, err)
			game.Manager.EndSession(sess.ID, "error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create match"})
			return
		}

		c.Header("X-Match-ID", sess.ID)
		c.JSON(http.StatusCreated, gin.H{
			"match_id":   sess.ID,
			"token":      token,
			"ws_url":     fmt.Sprintf("/api/v1/match/%s/ws?token=%s", sess.ID, token),
			"settings":   settings,
			"expires_in": int(ttl.Seconds()),
		})
	}
}

// GetMatch returns the latest snapshot of a live match, or the last one saved
// to Redis for a match that has ended
func GetMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if sess, err := game.Manager.GetSession(id); err == nil {
			c.JSON(http.StatusOK, gin.H{
				"match_id":   sess.ID,
				"live":       true,
				"created_at": sess.CreatedAt,
				"snapshot":   sess.Loop().LastSnapshot(),
			})
			return
		}

		snap, err := game.Manager.LoadSnapshot(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"match_id": id, "live": false, "snapshot": snap})
	}
}

// GetRecentMatches lists the latest finished matches
func GetRecentMatches() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		results, err := game.Manager.RecentResults(limit)
		if err != nil {
			log.Printf("[API] Failed to fetch recent matches: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch matches"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"matches": results, "count": len(results)})
	}
}
