package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playpool/pong3d/internal/ws"
)

// HandleMatchWebSocket attaches the browser that presents a match
func HandleMatchWebSocket() gin.HandlerFunc {
	return ws.HandleWebSocket
}
