package game

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// recorder keeps every presentation intent as a short string.
type recorder struct {
	NopPresenter
	events []string
	frames int
}

func (r *recorder) add(format string, args ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) OnMatchStart()                { r.add("start") }
func (r *recorder) OnMatchEnd(w Side)            { r.add("end:%s", w) }
func (r *recorder) OnGoal(s Side)                { r.add("goal:%s", s) }
func (r *recorder) OnScoreChanged(near, far int) { r.add("score:%d-%d", near, far) }
func (r *recorder) OnCameraReset()               { r.add("camera_reset") }
func (r *recorder) OnRequestSound(name string)   { r.add("sound:%s", name) }
func (r *recorder) OnStopSound(name string)      { r.add("stop:%s", name) }
func (r *recorder) OnSpectatorsCelebrate(s Side) { r.add("celebrate:%s", s) }
func (r *recorder) OnSpectatorsExit(s Side)      { r.add("exit:%s", s) }
func (r *recorder) OnStandsRecolor(p Palette)    { r.add("recolor:%s", p) }
func (r *recorder) OnBanner(text string)         { r.add("banner:%s", text) }
func (r *recorder) OnFieldChanged(s Settings)    { r.add("field:%vx%v", s.FieldWidth, s.FieldHeight) }
func (r *recorder) OnFrame(Snapshot)             { r.frames++ }

func (r *recorder) OnCameraPan(target mgl64.Vec3, d time.Duration) {
	r.add("pan:%v:%v", target.Z(), d)
}

func (r *recorder) has(event string) bool {
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, e := range r.events {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) reset() { r.events = nil }

// missingController parks the computer paddle where it can never save.
type missingController struct{}

func (missingController) Steer(p *Paddle, _ Ball, _ Field) { p.X = 1000 }

var t0 = time.Unix(1700000000, 0)

func newTestMatch(t *testing.T) (*Match, *recorder) {
	t.Helper()
	rec := &recorder{}
	m, err := NewMatch(DefaultSettings(), rec, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return m, rec
}

func TestNewMatchIsIdle(t *testing.T) {
	m, _ := newTestMatch(t)
	if m.Phase() != PhaseIdle || m.Score() != (Score{}) {
		t.Fatalf("new match = %s %+v", m.Phase(), m.Score())
	}
	if m.State().Ball.Position != m.State().Field.Center() {
		t.Error("ball not centered")
	}
	// Idle does not step the simulation
	before := m.State().Ticks
	m.Tick(t0)
	if m.State().Ticks != before {
		t.Error("idle match stepped the simulation")
	}
}

func TestNewMatchRejectsInvalidSettings(t *testing.T) {
	s := DefaultSettings()
	s.FieldHeight = -1
	if _, err := NewMatch(s, nil, nil); err == nil {
		t.Fatal("expected error for negative field height")
	}
}

func TestStartServesAndNotifies(t *testing.T) {
	m, rec := newTestMatch(t)
	if !m.Start(t0) {
		t.Fatal("Start refused while idle")
	}
	if m.Phase() != PhaseRallying {
		t.Fatalf("phase = %s", m.Phase())
	}
	v := m.State().Ball.Velocity
	if v.Z() != ServeSpeedZ || (v.X() != ServeSpeedX && v.X() != -ServeSpeedX) {
		t.Errorf("serve velocity = %v", v)
	}
	if !rec.has("start") || !rec.has("score:0-0") {
		t.Errorf("events = %v", rec.events)
	}
}

func TestStartIgnoredMidMatch(t *testing.T) {
	m, rec := newTestMatch(t)
	m.Start(t0)
	m.RegisterGoal(SideNear, t0)
	rec.reset()

	if m.Start(t0) {
		t.Error("Start accepted during goal pause")
	}
	if m.Phase() != PhaseGoalPause || m.Score().Near != 1 {
		t.Errorf("state changed: %s %+v", m.Phase(), m.Score())
	}
	if rec.has("start") {
		t.Error("start event emitted for an ignored request")
	}
}

func TestGoalSequence(t *testing.T) {
	m, rec := newTestMatch(t)
	m.Start(t0)
	rec.reset()

	if !m.RegisterGoal(SideNear, t0) {
		t.Fatal("goal not registered while rallying")
	}
	if m.Phase() != PhaseGoalPause || m.Score() != (Score{Near: 1}) {
		t.Fatalf("after goal: %s %+v", m.Phase(), m.Score())
	}
	stands := m.State().Field.StandsPosition(SideNear).Z()
	for _, e := range []string{"score:1-0", "goal:NEAR", "sound:goal", fmt.Sprintf("pan:%v:1.5s", stands)} {
		if !rec.has(e) {
			t.Errorf("missing %q in %v", e, rec.events)
		}
	}

	// Frozen during the pause
	ticks := m.State().Ticks
	m.Tick(t0.Add(900 * time.Millisecond))
	if m.State().Ticks != ticks {
		t.Error("simulation stepped during goal pause")
	}
	if n := rec.count("celebrate:NEAR"); n != 2 {
		t.Errorf("celebrations after 900ms = %d, want 2", n)
	}

	m.Tick(t0.Add(1500 * time.Millisecond))
	if !rec.has("camera_reset") {
		t.Error("camera not reset half way through the pause")
	}
	if rec.has("stop:goal") {
		t.Error("goal sound stopped too early")
	}

	m.Tick(t0.Add(2500 * time.Millisecond))
	if !rec.has("stop:goal") {
		t.Error("goal sound not stopped before resuming")
	}
	if m.Phase() != PhaseGoalPause {
		t.Fatalf("resumed early: %s", m.Phase())
	}

	m.Tick(t0.Add(3 * time.Second))
	if m.Phase() != PhaseRallying {
		t.Fatalf("phase after pause = %s, want RALLYING", m.Phase())
	}
	if m.State().Ticks != ticks+1 {
		t.Errorf("resume tick did not step the simulation")
	}
	if m.PendingActions() != 0 {
		t.Errorf("%d actions left after the sequence", m.PendingActions())
	}
}

func TestNearWinsAgainstMissingComputer(t *testing.T) {
	m, rec := newTestMatch(t)
	m.State().Computer = missingController{}
	m.Start(t0)

	interval := m.Settings().TickInterval()
	now := t0
	for i := 0; i < 5000 && m.Phase() != PhaseMatchEnd; i++ {
		now = now.Add(interval)
		m.Tick(now)
	}

	if m.Phase() != PhaseMatchEnd {
		t.Fatalf("phase = %s after 5000 ticks, score %+v", m.Phase(), m.Score())
	}
	if m.Winner() != SideNear || m.Score() != (Score{Near: 3}) {
		t.Fatalf("winner %s score %+v", m.Winner(), m.Score())
	}
	if rec.count("goal:NEAR") != 3 || rec.count("end:") != 1 {
		t.Errorf("events = %v", rec.events)
	}
	for _, e := range []string{"sound:victory", "sound:crowd", "banner:You win 3-0!"} {
		if !rec.has(e) {
			t.Errorf("missing %q", e)
		}
	}

	// Further goals are ignored for the whole closing sequence
	end := now
	if m.RegisterGoal(SideFar, now) || m.RegisterGoal(SideNear, now) {
		t.Error("goal accepted during match end")
	}
	ticks := m.State().Ticks
	for now.Before(end.Add(m.Settings().MatchEndDuration - interval)) {
		now = now.Add(interval)
		m.Tick(now)
		m.RegisterGoal(SideFar, now)
	}
	if m.Score() != (Score{Near: 3}) || m.Phase() != PhaseMatchEnd {
		t.Fatalf("match end disturbed: %s %+v", m.Phase(), m.Score())
	}
	if m.State().Ticks != ticks {
		t.Error("simulation stepped during match end")
	}
}

func TestMatchEndSequence(t *testing.T) {
	m, rec := newTestMatch(t)
	m.Start(t0)
	m.score = Score{Far: 2, Near: 1}
	rec.reset()

	m.RegisterGoal(SideFar, t0)
	if m.Phase() != PhaseMatchEnd || m.Winner() != SideFar {
		t.Fatalf("phase %s winner %s", m.Phase(), m.Winner())
	}
	for _, e := range []string{"end:FAR", "sound:defeat", "sound:crowd", "banner:The computer wins 3-1"} {
		if !rec.has(e) {
			t.Errorf("missing %q in %v", e, rec.events)
		}
	}

	total := m.Settings().MatchEndDuration
	m.Tick(t0.Add(total / 3))
	if !rec.has("exit:NEAR") {
		t.Error("losing spectators did not leave at one third")
	}
	if rec.has("recolor:far") {
		t.Error("stands recolored too early")
	}

	m.Tick(t0.Add(2 * total / 3))
	if !rec.has("recolor:far") {
		t.Error("stands not recolored at two thirds")
	}

	m.Tick(t0.Add(total - total/9))
	if !rec.has("stop:defeat") || !rec.has("stop:crowd") {
		t.Errorf("sounds not stopped: %v", rec.events)
	}
	if m.Phase() != PhaseMatchEnd {
		t.Fatal("left match end early")
	}

	rec.reset()
	m.Tick(t0.Add(total))
	if m.Phase() != PhaseIdle || m.Score() != (Score{}) {
		t.Fatalf("after match end: %s %+v", m.Phase(), m.Score())
	}
	if !rec.has("score:0-0") {
		t.Error("score reset not announced")
	}
	if m.State().Ball.Velocity != (mgl64.Vec3{}) {
		t.Error("ball still moving after match end")
	}

	if !m.Start(t0.Add(total + time.Second)) {
		t.Error("could not start a new match")
	}
}

func TestScoresStayInRange(t *testing.T) {
	m, _ := newTestMatch(t)
	m.Start(t0)
	now := t0
	for i := 0; i < 20; i++ {
		side := SideNear
		if i%2 == 1 {
			side = SideFar
		}
		prev := m.Score()
		m.RegisterGoal(side, now)
		s := m.Score()
		if s.Near < prev.Near || s.Far < prev.Far || s.Near > WinningScore || s.Far > WinningScore {
			t.Fatalf("score went from %+v to %+v", prev, s)
		}
		if (m.Phase() == PhaseMatchEnd) != (s.Near == WinningScore || s.Far == WinningScore) {
			t.Fatalf("phase %s with score %+v", m.Phase(), s)
		}
		// Skip to the end of the pause so the next goal counts
		now = now.Add(m.Settings().GoalPause)
		m.Tick(now)
	}
}

func TestAbortSupersedesSequence(t *testing.T) {
	m, rec := newTestMatch(t)
	m.Start(t0)
	m.RegisterGoal(SideNear, t0)
	m.Abort()
	rec.reset()

	if m.Phase() != PhaseIdle || m.Score() != (Score{}) {
		t.Fatalf("after abort: %s %+v", m.Phase(), m.Score())
	}
	m.Tick(t0.Add(10 * time.Second))
	if len(rec.events) != 0 {
		t.Errorf("stale sequence still firing: %v", rec.events)
	}

	// A restart inside the old pause window keeps rallying
	m.Start(t0.Add(time.Second))
	m.Tick(t0.Add(3 * time.Second))
	if m.Phase() != PhaseRallying {
		t.Errorf("phase = %s", m.Phase())
	}
}

func TestReconfigureOnlyWhenIdle(t *testing.T) {
	m, rec := newTestMatch(t)
	s := DefaultSettings()
	s.FieldWidth = 20

	m.Start(t0)
	if err := m.Reconfigure(s); err != ErrMatchInProgress {
		t.Errorf("Reconfigure mid-match = %v, want ErrMatchInProgress", err)
	}

	m.Abort()
	if err := m.Reconfigure(s); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if m.State().Field.Width != 20 || !rec.has("field:20x25") {
		t.Errorf("field = %+v, events %v", m.State().Field, rec.events)
	}

	s.FieldWidth = 0
	if err := m.Reconfigure(s); err == nil {
		t.Error("invalid settings accepted")
	}
	if m.State().Field.Width != 20 {
		t.Error("invalid settings reached the field")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m, _ := newTestMatch(t)
	m.Start(t0)
	snap := m.Snapshot()
	snap.Score.Near = 99
	snap.Ball.Position[0] = 99
	if m.Score().Near == 99 || m.State().Ball.Position.X() == 99 {
		t.Error("snapshot aliases match state")
	}
	if snap.Phase != PhaseRallying || snap.Settings != m.Settings() {
		t.Errorf("snapshot = %+v", snap)
	}
}
