package game

import (
	"fmt"
	"time"
)

const (
	celebrationJumps = 3
	celebrationEvery = 500 * time.Millisecond
)

// beginGoalSequence schedules the goal pause: pan to the scorer's stands, pan
// back, stop the goal sound and serve again.
func (m *Match) beginGoalSequence(scorer Side, now time.Time) {
	m.scheduler.Begin()
	pause := m.settings.GoalPause
	pan := pause / 2

	m.presenter.OnRequestSound(SoundGoal)
	m.panTo(m.state.Field.StandsPosition(scorer), pan)
	m.scheduleCelebration(scorer, now)

	m.scheduler.After(now, pan, func(time.Time) {
		m.resetCamera()
	})
	m.scheduler.After(now, pause-pause/6, func(time.Time) {
		m.presenter.OnStopSound(SoundGoal)
	})
	m.scheduler.After(now, pause, func(time.Time) {
		m.resume()
	})
}

// beginMatchEndSequence schedules the closing ceremony and the return to idle.
func (m *Match) beginMatchEndSequence(winner Side, now time.Time) {
	m.scheduler.Begin()
	total := m.settings.MatchEndDuration
	pan := total / 4
	loser := winner.Opponent()

	fanfare := SoundVictory
	if winner == SideFar {
		fanfare = SoundDefeat
	}
	m.presenter.OnRequestSound(fanfare)
	m.presenter.OnRequestSound(SoundCrowd)
	m.presenter.OnBanner(bannerText(winner, m.score))
	m.panTo(m.state.Field.StandsPosition(winner), pan)
	m.scheduleCelebration(winner, now)

	m.scheduler.After(now, total/3, func(time.Time) {
		m.panTo(m.state.Field.StandsPosition(loser), pan)
		m.presenter.OnSpectatorsExit(loser)
	})
	m.scheduler.After(now, 2*total/3, func(time.Time) {
		m.presenter.OnStandsRecolor(PaletteFor(winner))
	})
	m.scheduler.After(now, total-total/9, func(time.Time) {
		m.presenter.OnStopSound(fanfare)
		m.presenter.OnStopSound(SoundCrowd)
		m.resetCamera()
	})
	m.scheduler.After(now, total, func(time.Time) {
		m.finish()
	})
}

func (m *Match) scheduleCelebration(side Side, now time.Time) {
	for i := 0; i < celebrationJumps; i++ {
		m.scheduler.After(now, time.Duration(i)*celebrationEvery, func(time.Time) {
			m.presenter.OnSpectatorsCelebrate(side)
		})
	}
}

// resume ends a goal pause with a fresh serve.
func (m *Match) resume() {
	if m.phase != PhaseGoalPause {
		return
	}
	m.state.Serve(m.rng)
	m.phase = PhaseRallying
}

// finish closes the match-end sequence and waits for the next start request.
func (m *Match) finish() {
	if m.phase != PhaseMatchEnd {
		return
	}
	m.score = Score{}
	m.state.ResetBall()
	m.state.ResetPaddles()
	m.phase = PhaseIdle
	m.presenter.OnScoreChanged(0, 0)
}

func bannerText(winner Side, s Score) string {
	if winner == SideNear {
		return fmt.Sprintf("You win %d-%d!", s.Near, s.Far)
	}
	return fmt.Sprintf("The computer wins %d-%d", s.Far, s.Near)
}
