package game

import (
	"context"
	"sync"
	"time"

	"github.com/df-mc/atomic"
	"github.com/go-gl/mathgl/mgl64"
)

// Session is one hosted match: its loop goroutine, the presenter currently
// attached to it and the hooks to run when it closes.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	loop     *Loop
	relay    *relayPresenter
	recorder *matchRecorder
	cancel   context.CancelFunc
	done     chan struct{}

	lastActivity atomic.Int64
	closed       atomic.Bool

	mu      sync.Mutex
	onClose []func(reason string)
}

// Loop returns the session's frame loop.
func (s *Session) Loop() *Loop { return s.loop }

// Attach routes presentation intents to p, replacing any previous presenter.
func (s *Session) Attach(p Presenter) { s.relay.set(p) }

// Detach stops routing to p if it is still the attached presenter.
func (s *Session) Detach(p Presenter) { s.relay.clear(p) }

// OnClose registers fn to run once when the session ends.
func (s *Session) OnClose(fn func(reason string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = append(s.onClose, fn)
}

// Touch records player activity.
func (s *Session) Touch() {
	s.lastActivity.Store(time.Now().Unix())
}

// LastActivity is the time of the most recent Touch.
func (s *Session) LastActivity() time.Time {
	return time.Unix(s.lastActivity.Load(), 0)
}

// Done is closed once the loop goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Closed reports whether the session has ended.
func (s *Session) Closed() bool { return s.closed.Load() }

// close stops the loop and runs the close hooks exactly once.
func (s *Session) close(reason string) bool {
	if !s.closed.CAS(false, true) {
		return false
	}
	s.cancel()
	s.mu.Lock()
	hooks := s.onClose
	s.onClose = nil
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(reason)
	}
	return true
}

// relayPresenter forwards to whichever presenter is attached, if any.
type relayPresenter struct {
	mu     sync.RWMutex
	target Presenter
}

func (r *relayPresenter) set(p Presenter) {
	r.mu.Lock()
	r.target = p
	r.mu.Unlock()
}

func (r *relayPresenter) clear(p Presenter) {
	r.mu.Lock()
	if r.target == p {
		r.target = nil
	}
	r.mu.Unlock()
}

func (r *relayPresenter) get() Presenter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.target == nil {
		return NopPresenter{}
	}
	return r.target
}

func (r *relayPresenter) OnMatchStart()                { r.get().OnMatchStart() }
func (r *relayPresenter) OnMatchEnd(w Side)            { r.get().OnMatchEnd(w) }
func (r *relayPresenter) OnGoal(s Side)                { r.get().OnGoal(s) }
func (r *relayPresenter) OnScoreChanged(near, far int) { r.get().OnScoreChanged(near, far) }
func (r *relayPresenter) OnCameraReset()               { r.get().OnCameraReset() }
func (r *relayPresenter) OnRequestSound(name string)   { r.get().OnRequestSound(name) }
func (r *relayPresenter) OnStopSound(name string)      { r.get().OnStopSound(name) }
func (r *relayPresenter) OnSpectatorsCelebrate(s Side) { r.get().OnSpectatorsCelebrate(s) }
func (r *relayPresenter) OnSpectatorsExit(s Side)      { r.get().OnSpectatorsExit(s) }
func (r *relayPresenter) OnStandsRecolor(p Palette)    { r.get().OnStandsRecolor(p) }
func (r *relayPresenter) OnBanner(text string)         { r.get().OnBanner(text) }
func (r *relayPresenter) OnFieldChanged(s Settings)    { r.get().OnFieldChanged(s) }
func (r *relayPresenter) OnFrame(s Snapshot)           { r.get().OnFrame(s) }

func (r *relayPresenter) OnCameraPan(target mgl64.Vec3, d time.Duration) {
	r.get().OnCameraPan(target, d)
}
