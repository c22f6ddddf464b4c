package game

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/playpool/pong3d/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	eventsChannel = "match_events"
	snapshotTTL   = time.Hour
)

func snapshotKey(id string) string {
	return "match:" + id + ":state"
}

// matchRecorder persists match milestones. It runs on the loop goroutine, so
// every blocking call is pushed onto its own goroutine.
type matchRecorder struct {
	NopPresenter
	sm        *SessionManager
	session   *Session
	startedAt time.Time
	dirty     bool
}

func newMatchRecorder(sm *SessionManager, s *Session) *matchRecorder {
	return &matchRecorder{sm: sm, session: s}
}

func (r *matchRecorder) OnMatchStart() {
	r.startedAt = time.Now()
	r.dirty = true
	r.sm.publishEvent(map[string]interface{}{"type": "match_started", "match_id": r.session.ID})
}

func (r *matchRecorder) OnScoreChanged(near, far int) {
	r.dirty = true
}

func (r *matchRecorder) OnMatchEnd(winner Side) {
	match := r.session.loop.Match()
	snap := match.Snapshot()
	result := models.MatchResult{
		SessionID:   r.session.ID,
		Winner:      string(winner),
		NearScore:   snap.Score.Near,
		FarScore:    snap.Score.Far,
		Ticks:       snap.Tick,
		FieldWidth:  snap.Field.Width,
		FieldHeight: snap.Field.Height,
		PaddleSpeed: snap.Settings.PaddleSpeed,
		StartedAt:   r.startedAt,
		CompletedAt: time.Now(),
	}
	go func() {
		id, err := r.sm.RecordMatchResult(result)
		if err != nil {
			log.Printf("[DB] Failed to record result for session %s: %v", result.SessionID, err)
			return
		}
		if id > 0 {
			r.sm.publishEvent(map[string]interface{}{
				"type":      "match_recorded",
				"match_id":  result.SessionID,
				"result_id": id,
				"winner":    result.Winner,
			})
		}
	}()
}

func (r *matchRecorder) OnFrame(s Snapshot) {
	if !r.dirty {
		return
	}
	r.dirty = false
	go func() {
		if err := r.sm.saveSnapshotToRedis(r.session.ID, s); err != nil {
			log.Printf("[REDIS] Failed to save snapshot for session %s: %v", r.session.ID, err)
		}
	}()
}

// RecordMatchResult stores a finished match. Returns 0 when no database is configured.
func (sm *SessionManager) RecordMatchResult(r models.MatchResult) (int, error) {
	if sm == nil || sm.db == nil {
		return 0, nil
	}

	var id int
	err := sm.db.QueryRowx(
		`INSERT INTO match_results (session_id, winner, near_score, far_score, ticks, field_width, field_height, paddle_speed, started_at, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		r.SessionID, r.Winner, r.NearScore, r.FarScore, r.Ticks, r.FieldWidth, r.FieldHeight, r.PaddleSpeed, r.StartedAt, r.CompletedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	log.Printf("[DB] Match result %d recorded for session %s (winner=%s %d-%d)", id, r.SessionID, r.Winner, r.NearScore, r.FarScore)
	return id, nil
}

// RecentResults returns the latest finished matches, newest first.
func (sm *SessionManager) RecentResults(limit int) ([]models.MatchResult, error) {
	if sm.db == nil {
		return []models.MatchResult{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	results := []models.MatchResult{}
	err := sm.db.Select(&results, `
		SELECT id, session_id, winner, near_score, far_score, ticks, field_width, field_height, paddle_speed, started_at, completed_at
		FROM match_results
		ORDER BY completed_at DESC
		LIMIT $1
	`, limit)
	return results, err
}

// saveSnapshotToRedis stores the latest snapshot of a session.
func (sm *SessionManager) saveSnapshotToRedis(id string, s Snapshot) error {
	if sm.rdb == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return sm.rdb.SetEx(context.Background(), snapshotKey(id), data, snapshotTTL).Err()
}

// LoadSnapshot returns a session's last known snapshot from Redis. Live sessions
// should be read through their loop instead.
func (sm *SessionManager) LoadSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	if sm.rdb == nil {
		return nil, ErrSessionNotFound
	}
	data, err := sm.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// publishEvent broadcasts a match event for any listening instance.
func (sm *SessionManager) publishEvent(payload map[string]interface{}) {
	if sm.rdb == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[REDIS] Failed to marshal event: %v", err)
		return
	}
	if err := sm.rdb.Publish(context.Background(), eventsChannel, b).Err(); err != nil {
		log.Printf("[REDIS] Publish %v failed: %v", payload["type"], err)
	}
}
