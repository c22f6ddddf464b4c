package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playpool/pong3d/internal/game"
	"github.com/playpool/pong3d/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		if wsConfig == nil {
			return true // Allow all origins until configured
		}
		return middleware.OriginAllowed(wsConfig, r.Header.Get("Origin"))
	},
}

const (
	sendBuffer   = 256
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingEvery    = 30 * time.Second
)

// Client is the browser connection presenting one match
type Client struct {
	conn      *websocket.Conn
	matchID   string
	session   *game.Session
	presenter *Presenter
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, sess *game.Session) *Client {
	c := &Client{
		conn:    conn,
		matchID: sess.ID,
		session: sess,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
	c.presenter = NewPresenter(sess.ID, c.send, c.done)
	return c
}

// close stops the write pump. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Hub maintains the set of active clients, one per match
type Hub struct {
	clients    map[string]*Client  // matchID -> Client
	watched    map[string]struct{} // sessions with a close hook installed
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		watched:    make(map[string]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SendToMatch sends a message to the client presenting a match, if connected
func (h *Hub) SendToMatch(matchID string, message interface{}) bool {
	h.mu.RLock()
	client, exists := h.clients[matchID]
	h.mu.RUnlock()

	if !exists {
		return false
	}
	return client.presenter.send(message)
}

// Disconnect tells the client its match is over and closes the connection
func (h *Hub) Disconnect(matchID, reason string) {
	h.mu.Lock()
	client, exists := h.clients[matchID]
	if exists {
		delete(h.clients, matchID)
	}
	h.mu.Unlock()

	if !exists {
		return
	}
	client.session.Detach(client.presenter)
	client.presenter.send(map[string]interface{}{"type": "session_closed", "reason": reason})
	client.close()
	log.Printf("[WS] Disconnected match %s (%s)", matchID, reason)
}

// watch disconnects the match's client when the session closes. The hook is
// installed once per session however often the browser reconnects.
func (h *Hub) watch(sess *game.Session) {
	h.mu.Lock()
	if _, ok := h.watched[sess.ID]; ok {
		h.mu.Unlock()
		return
	}
	h.watched[sess.ID] = struct{}{}
	h.mu.Unlock()

	sess.OnClose(func(reason string) {
		h.unwatch(sess.ID)
		h.Disconnect(sess.ID, reason)
	})
	if sess.Closed() {
		h.unwatch(sess.ID)
		h.Disconnect(sess.ID, "closed")
	}
}

func (h *Hub) unwatch(matchID string) {
	h.mu.Lock()
	delete(h.watched, matchID)
	h.mu.Unlock()
}

// ConnectedCount returns the number of connected browsers
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run processes registrations until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, exists := h.clients[client.matchID]; exists {
				log.Printf("[WS] Match %s reconnecting - closing old connection", client.matchID)
				old.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"),
					time.Now().Add(time.Second))
				old.close()
			}
			h.clients[client.matchID] = client
			h.mu.Unlock()

			client.session.Attach(client.presenter)
			client.presenter.send(map[string]interface{}{
				"type":     "connected",
				"match_id": client.matchID,
				"settings": client.session.Loop().Settings(),
			})
			log.Printf("[WS] Client connected to match %s", client.matchID)

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.matchID]; ok && cur == client {
				delete(h.clients, client.matchID)
				log.Printf("[WS] Client disconnected from match %s", client.matchID)
			}
			h.mu.Unlock()

			client.session.Detach(client.presenter)
			// Held keys would otherwise keep the paddle moving with nobody watching
			client.session.Loop().Match().Input().Release()
			client.close()
		}
	}
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for match %s: %v", c.matchID, err)
				return
			}

		case <-c.done:
			// Flush whatever is queued, then close
			for {
				select {
				case message := <-c.send:
					c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if c.conn.WriteMessage(websocket.TextMessage, message) != nil {
						return
					}
				default:
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for match %s: %v", c.matchID, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.presenter.send(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
