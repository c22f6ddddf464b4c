package game

import (
	"math/rand"
	"testing"
	"time"
)

func newTestLoop(t *testing.T) (*Loop, *recorder) {
	t.Helper()
	rec := &recorder{}
	m, err := NewMatch(DefaultSettings(), rec, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return NewLoop(m, 120), rec
}

func TestFrameRunsOneTickPerInterval(t *testing.T) {
	l, rec := newTestLoop(t)
	interval := l.Match().Settings().TickInterval()

	if !l.Frame(t0) {
		t.Fatal("first frame did not tick")
	}
	if l.Frame(t0.Add(interval / 2)) {
		t.Error("ticked before the interval elapsed")
	}
	if !l.Frame(t0.Add(interval)) {
		t.Error("did not tick after a full interval")
	}
	// A long stall still yields a single tick
	if !l.Frame(t0.Add(10 * interval)) {
		t.Error("did not tick after a stall")
	}
	if l.Ticks() != 3 || rec.frames != 3 {
		t.Errorf("ticks=%d frames=%d, want 3/3", l.Ticks(), rec.frames)
	}
}

func TestFrameAppliesStartRequest(t *testing.T) {
	l, _ := newTestLoop(t)
	l.RequestStart()
	l.Frame(t0)
	if l.Match().Phase() != PhaseRallying {
		t.Fatalf("phase = %s", l.Match().Phase())
	}
	if l.Match().State().Ticks != 1 {
		t.Errorf("sim ticks = %d, want 1", l.Match().State().Ticks)
	}
	if snap := l.LastSnapshot(); snap.Phase != PhaseRallying || snap.Tick != 1 {
		t.Errorf("last snapshot = %s tick %d", snap.Phase, snap.Tick)
	}
}

func TestSettingsWaitForIdle(t *testing.T) {
	l, rec := newTestLoop(t)
	l.RequestStart()
	l.Frame(t0)

	s := DefaultSettings()
	s.FieldWidth = 21
	if err := l.RequestSettings(s); err != nil {
		t.Fatalf("RequestSettings: %v", err)
	}
	if l.Settings().FieldWidth != 21 {
		t.Error("pending settings not reported")
	}

	l.Frame(t0.Add(time.Second))
	if l.Match().Settings().FieldWidth != DefaultFieldWidth {
		t.Fatal("settings applied mid-match")
	}

	l.RequestAbort()
	l.Frame(t0.Add(2 * time.Second))
	if l.Match().Phase() != PhaseIdle || l.Match().Settings().FieldWidth != 21 {
		t.Fatalf("after abort: %s width %v", l.Match().Phase(), l.Match().Settings().FieldWidth)
	}
	if !rec.has("field:21x25") {
		t.Errorf("events = %v", rec.events)
	}
	if l.Settings().FieldWidth != 21 {
		t.Errorf("applied settings = %+v", l.Settings())
	}
}

func TestRequestSettingsValidates(t *testing.T) {
	l, _ := newTestLoop(t)
	s := DefaultSettings()
	s.PaddleSpeed = 0
	if err := l.RequestSettings(s); err == nil {
		t.Fatal("zero paddle speed accepted")
	}
	if l.Settings() != DefaultSettings() {
		t.Error("rejected settings became pending")
	}
}
