package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playpool/pong3d/internal/config"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client
var wsConfig *config.Config

// Configure hands the package its config and optional Redis client.
func Configure(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartMatchEventSubscriber relays match_events to the browsers connected here
func StartMatchEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; match event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, "match_events")
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Println("[WS] match_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}
			handleMatchEvent(GameHub, payload)
		}
	}()
}

func handleMatchEvent(h *Hub, payload map[string]interface{}) {
	typeStr, _ := payload["type"].(string)
	matchID, _ := payload["match_id"].(string)
	if matchID == "" {
		return
	}

	switch typeStr {
	case "match_recorded":
		h.SendToMatch(matchID, map[string]interface{}{
			"type":      "match_recorded",
			"result_id": payload["result_id"],
			"winner":    payload["winner"],
		})

	case "session_closed":
		reason, _ := payload["reason"].(string)
		h.Disconnect(matchID, reason)

	case "match_started":
		// Emitted for other listeners; the browser already has match_started

	default:
		log.Printf("[WS] unknown event type: %s", typeStr)
	}
}
