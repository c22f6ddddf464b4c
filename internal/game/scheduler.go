package game

import (
	"time"

	"github.com/samber/lo"
)

// scheduledAction is a deferred step of a presentation sequence.
type scheduledAction struct {
	at         time.Time
	generation uint64
	seq        uint64
	run        func(now time.Time)
}

// Scheduler runs delayed actions on the loop goroutine. Every sequence belongs to
// a generation; Begin starts a new one and silently drops whatever the previous
// sequence still had pending.
type Scheduler struct {
	generation uint64
	seq        uint64
	pending    []scheduledAction
}

// Begin supersedes all pending actions and returns the new generation.
func (s *Scheduler) Begin() uint64 {
	s.generation++
	s.pending = s.pending[:0]
	return s.generation
}

// Generation is the currently active sequence generation.
func (s *Scheduler) Generation() uint64 {
	return s.generation
}

// After queues fn to run delay after base within the current generation.
func (s *Scheduler) After(base time.Time, delay time.Duration, fn func(now time.Time)) {
	s.seq++
	s.pending = append(s.pending, scheduledAction{
		at:         base.Add(delay),
		generation: s.generation,
		seq:        s.seq,
		run:        fn,
	})
}

// RunDue executes every action due at or before now, earliest first. Actions
// may call Begin or After; anything queued by a superseded generation is skipped.
func (s *Scheduler) RunDue(now time.Time) int {
	ran := 0
	for {
		idx := -1
		for i, a := range s.pending {
			if a.generation != s.generation || a.at.After(now) {
				continue
			}
			if idx == -1 || a.at.Before(s.pending[idx].at) || (a.at.Equal(s.pending[idx].at) && a.seq < s.pending[idx].seq) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		a := s.pending[idx]
		s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
		a.run(now)
		ran++
	}
	s.compact()
	return ran
}

// Pending returns how many live actions are still waiting.
func (s *Scheduler) Pending() int {
	n := 0
	for _, a := range s.pending {
		if a.generation == s.generation {
			n++
		}
	}
	return n
}

// NextAt reports when the earliest live action is due.
func (s *Scheduler) NextAt() (time.Time, bool) {
	live := lo.Filter(s.pending, func(a scheduledAction, _ int) bool {
		return a.generation == s.generation
	})
	if len(live) == 0 {
		return time.Time{}, false
	}
	next := lo.MinBy(live, func(a, b scheduledAction) bool { return a.at.Before(b.at) })
	return next.at, true
}

func (s *Scheduler) compact() {
	kept := s.pending[:0]
	for _, a := range s.pending {
		if a.generation == s.generation {
			kept = append(kept, a)
		}
	}
	s.pending = kept
}
