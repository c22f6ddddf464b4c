package game

import (
	"testing"
	"time"
)

func TestSchedulerRunsInTimeOrder(t *testing.T) {
	var s Scheduler
	base := time.Unix(100, 0)
	var got []string
	s.After(base, 2*time.Second, func(time.Time) { got = append(got, "c") })
	s.After(base, time.Second, func(time.Time) { got = append(got, "a") })
	s.After(base, time.Second, func(time.Time) { got = append(got, "b") })

	if n := s.RunDue(base.Add(500 * time.Millisecond)); n != 0 {
		t.Fatalf("ran %d actions early", n)
	}
	if n := s.RunDue(base.Add(3 * time.Second)); n != 3 {
		t.Fatalf("ran %d actions, want 3", n)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("order = %v, want [a b c]", got)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d after running everything", s.Pending())
	}
}

func TestSchedulerBeginSupersedesPending(t *testing.T) {
	var s Scheduler
	base := time.Unix(100, 0)
	ran := false
	s.After(base, time.Second, func(time.Time) { ran = true })

	gen := s.Begin()
	if gen != s.Generation() {
		t.Errorf("Begin returned %d, Generation %d", gen, s.Generation())
	}
	s.RunDue(base.Add(time.Hour))
	if ran {
		t.Error("superseded action ran")
	}
}

func TestSchedulerActionCanSupersedeLaterOnes(t *testing.T) {
	var s Scheduler
	base := time.Unix(100, 0)
	var got []string
	s.After(base, time.Second, func(now time.Time) {
		got = append(got, "first")
		s.Begin()
		s.After(now, 0, func(time.Time) { got = append(got, "replacement") })
	})
	s.After(base, 2*time.Second, func(time.Time) { got = append(got, "stale") })

	s.RunDue(base.Add(5 * time.Second))
	if len(got) != 2 || got[0] != "first" || got[1] != "replacement" {
		t.Errorf("ran %v, want [first replacement]", got)
	}
}

func TestSchedulerNextAt(t *testing.T) {
	var s Scheduler
	if _, ok := s.NextAt(); ok {
		t.Error("NextAt reported an action on an empty scheduler")
	}
	base := time.Unix(100, 0)
	s.After(base, 3*time.Second, func(time.Time) {})
	s.After(base, time.Second, func(time.Time) {})

	at, ok := s.NextAt()
	if !ok || !at.Equal(base.Add(time.Second)) {
		t.Errorf("NextAt = %v, %v", at, ok)
	}
}
