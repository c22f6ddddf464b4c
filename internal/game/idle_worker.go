package game

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/playpool/pong3d/internal/config"
	"github.com/redis/go-redis/v9"
)

const idleSetKey = "session_idle"

func lastActiveKey(id string) string {
	return "last_active:" + id
}

// Touch records activity for a session and pushes its idle deadline forward
func (sm *SessionManager) Touch(s *Session) {
	s.Touch()
	if sm.rdb == nil || sm.config.IdleTimeoutSeconds <= 0 {
		return
	}
	ctx := context.Background()
	now := time.Now().Unix()
	sm.rdb.Set(ctx, lastActiveKey(s.ID), fmt.Sprintf("%d", now), 0)
	sm.rdb.ZAdd(ctx, idleSetKey, redis.Z{Score: float64(now + int64(sm.config.IdleTimeoutSeconds)), Member: s.ID})
}

func (sm *SessionManager) forgetIdle(id string) {
	if sm.rdb == nil {
		return
	}
	ctx := context.Background()
	sm.rdb.ZRem(ctx, idleSetKey, id)
	sm.rdb.Del(ctx, lastActiveKey(id))
}

// StartIdleWorker starts a background worker that ends sessions nobody has
// touched for IdleTimeoutSeconds, using a Redis sorted set of deadlines
func StartIdleWorker(ctx context.Context, rdb *redis.Client, cfg *config.Config) {
	if rdb == nil || cfg == nil || Manager == nil {
		log.Println("[IDLE] Redis, config or manager missing; idle worker not started")
		return
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.IdleWorkerPollInterval) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				processIdleSessions(ctx, rdb, cfg, time.Now())
			}
		}
	}()
}

func processIdleSessions(ctx context.Context, rdb *redis.Client, cfg *config.Config, now time.Time) {
	members, err := rdb.ZRangeByScore(ctx, idleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
		return
	}

	for _, id := range members {
		// Attempt to remove (race-safe)
		if removed, _ := rdb.ZRem(ctx, idleSetKey, id).Result(); removed == 0 {
			continue
		}
		last, _ := rdb.Get(ctx, lastActiveKey(id)).Result()
		lastTs, _ := strconv.ParseInt(last, 10, 64)
		if now.Unix()-lastTs < int64(cfg.IdleTimeoutSeconds) {
			continue
		}
		log.Printf("[IDLE] Ending session %s after %ds without input", id, now.Unix()-lastTs)
		if err := Manager.EndSession(id, "idle"); err != nil {
			log.Printf("[IDLE] Session %s already gone: %v", id, err)
		}
	}
}
