package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/df-mc/atomic"
	"github.com/getsentry/sentry-go"
)

// Loop drives a Match at a fixed tick rate from a faster frame clock. Requests
// from other goroutines are queued and applied on the loop goroutine.
type Loop struct {
	match     *Match
	frameRate int
	last      time.Time

	startRequested atomic.Bool
	abortRequested atomic.Bool
	pending        atomic.Value[Settings]
	pendingSeq     atomic.Int64
	appliedSeq     atomic.Int64
	current        atomic.Value[Settings]
	snapshot       atomic.Value[Snapshot]
	ticks          atomic.Int64
}

func NewLoop(m *Match, frameRate int) *Loop {
	if frameRate <= 0 {
		frameRate = 2 * DefaultTickRate
	}
	l := &Loop{match: m, frameRate: frameRate}
	l.current.Store(m.Settings())
	l.snapshot.Store(m.Snapshot())
	return l
}

// Match exposes the underlying match. Only touch it from the loop goroutine.
func (l *Loop) Match() *Match { return l.match }

// Ticks is the number of processed simulation frames; safe from any goroutine.
func (l *Loop) Ticks() int64 { return l.ticks.Load() }

// RequestStart asks for a new match on the next frame. Ignored unless idle.
func (l *Loop) RequestStart() { l.startRequested.Store(true) }

// RequestAbort returns the match to idle on the next frame.
func (l *Loop) RequestAbort() { l.abortRequested.Store(true) }

// LastSnapshot is the snapshot published by the most recent tick. Safe from any goroutine.
func (l *Loop) LastSnapshot() Snapshot { return l.snapshot.Load() }

// Settings returns the settings the match will run with next: the pending
// request if there is one, otherwise the applied settings. Safe from any goroutine.
func (l *Loop) Settings() Settings {
	if l.pendingSeq.Load() != l.appliedSeq.Load() {
		return l.pending.Load()
	}
	return l.current.Load()
}

// RequestSettings validates s and applies it the next time the match is idle.
func (l *Loop) RequestSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	l.pending.Store(s)
	l.pendingSeq.Inc()
	return nil
}

// Frame processes one frame. When at least one tick interval has elapsed since
// the last processed frame it runs exactly one match tick and publishes a
// snapshot, returning true.
func (l *Loop) Frame(now time.Time) bool {
	l.applyRequests(now)

	if !l.last.IsZero() && now.Sub(l.last) < l.match.Settings().TickInterval() {
		return false
	}
	l.last = now
	l.match.Tick(now)
	l.ticks.Inc()
	snap := l.match.Snapshot()
	l.snapshot.Store(snap)
	l.match.presenter.OnFrame(snap)
	return true
}

func (l *Loop) applyRequests(now time.Time) {
	if l.abortRequested.Swap(false) {
		l.match.Abort()
	}
	if seq := l.pendingSeq.Load(); seq != l.appliedSeq.Load() && l.match.Phase() == PhaseIdle {
		if err := l.match.Reconfigure(l.pending.Load()); err != nil {
			log.Printf("[GAME] Rejected settings: %v", err)
		} else {
			l.current.Store(l.match.Settings())
		}
		l.appliedSeq.Store(seq)
	}
	if l.startRequested.Swap(false) {
		l.match.Start(now)
	}
}

// Run drives frames until ctx is cancelled. A panic inside the match ends the
// loop and is reported rather than taking the process down.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
			err = fmt.Errorf("game loop panic: %v", r)
			log.Printf("[GAME] %v", err)
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(l.frameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.Frame(now)
		}
	}
}
