package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playpool/pong3d/internal/game"
)

type KeyData struct {
	Key string `json:"key"`
}

type ConfigureData struct {
	Settings game.SettingsPatch `json:"settings"`
}

// GameHub is the single hub for all matches.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go GameHub.Run()
}

// HandleWebSocket attaches a browser to a match. The token issued with the
// match must be passed as ?token=.
func HandleWebSocket(c *gin.Context) {
	matchID := c.Param("id")
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	if wsConfig == nil || game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "matches unavailable"})
		return
	}

	claimed, err := ParseMatchToken(wsConfig.JWTSecret, token)
	if err != nil || claimed != matchID {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid match token"})
		return
	}

	sess, err := game.Manager.GetSession(matchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := newClient(conn, sess)
	GameHub.register <- client
	game.Manager.Touch(sess)
	GameHub.watch(sess)

	go client.writePump()
	go client.readPump()
}

// readPump reads player input for a match.
func (c *Client) readPump() {
	defer func() {
		GameHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for match %s: %v", c.matchID, err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		if game.Manager != nil {
			game.Manager.Touch(c.session)
		}
		if err := c.handleMessage(msg); err != nil {
			c.sendError(err.Error())
		}
	}
}

// handleMessage applies one player message to the session.
func (c *Client) handleMessage(msg WSMessage) error {
	loop := c.session.Loop()

	switch msg.Type {
	case "key_down", "key_up":
		var data KeyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return errInvalidData
		}
		key, err := game.ParseKey(data.Key)
		if err != nil {
			return err
		}
		in := loop.Match().Input()
		if msg.Type == "key_down" {
			in.KeyDown(key)
		} else {
			in.KeyUp(key)
		}

	case "start_match":
		loop.RequestStart()

	case "abort_match":
		loop.RequestAbort()

	case "configure":
		var data ConfigureData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return errInvalidData
		}
		return loop.RequestSettings(data.Settings.Apply(loop.Settings()))

	default:
		return errUnknownType
	}
	return nil
}
