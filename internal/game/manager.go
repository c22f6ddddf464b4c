package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	mrand "math/rand"
	"sort"
	"sync"
	"time"

	"github.com/df-mc/atomic"
	"github.com/jmoiron/sqlx"
	"github.com/playpool/pong3d/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
)

// SessionManager owns every hosted match session
type SessionManager struct {
	sessions map[string]*Session // keyed by session ID
	rdb      *redis.Client       // Redis client for snapshots, events and idle tracking
	db       *sqlx.DB            // SQL DB for match history
	config   *config.Config      // Application config, read-only after startup
	defaults atomic.Value[Settings]
	mu       sync.RWMutex
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager initializes the global session manager and its background jobs
func InitializeManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewSessionManager(db, rdb, cfg)
	go Manager.StartExpiryChecker(ctx)
}

// NewSessionManager creates a new session manager. db and rdb may be nil.
func NewSessionManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	sm := &SessionManager{
		sessions: make(map[string]*Session),
		rdb:      rdb,
		db:       db,
		config:   cfg,
	}
	sm.defaults.Store(SettingsFromConfig(cfg))
	return sm
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// generateSessionID generates a unique session ID
func generateSessionID() string {
	return "match_" + generateToken(8)
}

// DefaultSettings returns the settings new sessions start from.
func (sm *SessionManager) DefaultSettings() Settings {
	return sm.defaults.Load()
}

// SetDefaults replaces the settings used by sessions created from now on.
// Running sessions keep their own settings.
func (sm *SessionManager) SetDefaults(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	sm.defaults.Store(s)
	log.Printf("[GAME] Defaults updated (field=%vx%v paddle_speed=%v tick_rate=%d)",
		s.FieldWidth, s.FieldHeight, s.PaddleSpeed, s.TickRate)
	return nil
}

// CreateSession validates the settings, builds an idle match and starts its loop.
func (sm *SessionManager) CreateSession(s Settings) (*Session, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	sm.mu.Lock()
	if sm.config.MaxSessions > 0 && len(sm.sessions) >= sm.config.MaxSessions {
		sm.mu.Unlock()
		return nil, ErrTooManySessions
	}
	id := generateSessionID()
	sess := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		relay:     &relayPresenter{},
		done:      make(chan struct{}),
	}
	sess.recorder = newMatchRecorder(sm, sess)

	rng := mrand.New(mrand.NewSource(time.Now().UnixNano()))
	match, err := NewMatch(s, Presenters{sess.recorder, sess.relay}, rng)
	if err != nil {
		sm.mu.Unlock()
		return nil, err
	}
	sess.loop = NewLoop(match, sm.config.FrameRate)
	sm.sessions[id] = sess
	sm.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	sess.Touch()
	sm.Touch(sess)

	go func() {
		defer close(sess.done)
		if err := sess.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[GAME] Session %s loop stopped: %v", id, err)
			sm.EndSession(id, "error")
		}
	}()

	log.Printf("[GAME] Session created: %s (field=%vx%v paddle_speed=%v tick_rate=%d)",
		id, s.FieldWidth, s.FieldHeight, s.PaddleSpeed, s.TickRate)
	return sess, nil
}

// GetSession retrieves a live session by ID
func (sm *SessionManager) GetSession(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sess, ok := sm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// EndSession stops a session's loop and forgets it
func (sm *SessionManager) EndSession(id, reason string) error {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if sess.close(reason) {
		sm.forgetIdle(id)
		sm.publishEvent(map[string]interface{}{
			"type":     "session_closed",
			"match_id": id,
			"reason":   reason,
		})
		log.Printf("[GAME] Session %s ended (%s)", id, reason)
	}
	return nil
}

// ActiveSessionIDs lists live sessions, oldest first
func (sm *SessionManager) ActiveSessionIDs() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := lo.Keys(sm.sessions)
	sort.Slice(ids, func(i, j int) bool {
		return sm.sessions[ids[i]].CreatedAt.Before(sm.sessions[ids[j]].CreatedAt)
	})
	return ids
}

// GetActiveSessionCount returns the number of live sessions
func (sm *SessionManager) GetActiveSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Shutdown ends every session
func (sm *SessionManager) Shutdown() {
	for _, id := range sm.ActiveSessionIDs() {
		sm.EndSession(id, "shutdown")
	}
}

// StartExpiryChecker ends sessions that outlived SessionMaxMinutes. Without Redis
// it also enforces the idle timeout, which the idle worker handles otherwise.
func (sm *SessionManager) StartExpiryChecker(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sm.checkExpiredSessions(time.Now())
		}
	}
}

func (sm *SessionManager) checkExpiredSessions(now time.Time) int {
	maxAge := time.Duration(sm.config.SessionMaxMinutes) * time.Minute
	idle := time.Duration(sm.config.IdleTimeoutSeconds) * time.Second

	sm.mu.RLock()
	expired := lo.Filter(lo.Values(sm.sessions), func(s *Session, _ int) bool {
		if maxAge > 0 && now.Sub(s.CreatedAt) > maxAge {
			return true
		}
		return sm.rdb == nil && idle > 0 && now.Sub(s.LastActivity()) > idle
	})
	sm.mu.RUnlock()

	for _, s := range expired {
		log.Printf("[EXPIRY] Session %s expired (age=%v idle=%v)", s.ID, now.Sub(s.CreatedAt).Round(time.Second), now.Sub(s.LastActivity()).Round(time.Second))
		sm.EndSession(s.ID, "expired")
	}
	return len(expired)
}
