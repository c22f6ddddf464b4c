package game

import (
	"errors"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrMatchInProgress is returned when an idle-only operation is attempted mid-match.
var ErrMatchInProgress = errors.New("match in progress")

// Match sequences rally, goal pause and match end around a GameState.
// It is not safe for concurrent use; the loop goroutine owns it.
type Match struct {
	state     *GameState
	settings  Settings
	phase     Phase
	score     Score
	winner    Side
	camera    mgl64.Vec3
	scheduler Scheduler
	presenter Presenter
	rng       *rand.Rand
}

// NewMatch creates an idle match. A nil presenter discards all side effects.
func NewMatch(s Settings, p Presenter, rng *rand.Rand) (*Match, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if p == nil {
		p = NopPresenter{}
	}
	gs, err := NewGameState(s, rng)
	if err != nil {
		return nil, err
	}
	return &Match{
		state:     gs,
		settings:  s,
		phase:     PhaseIdle,
		camera:    gs.Field.CameraHome(),
		presenter: p,
		rng:       rng,
	}, nil
}

func (m *Match) Phase() Phase         { return m.phase }
func (m *Match) Score() Score         { return m.score }
func (m *Match) Winner() Side         { return m.winner }
func (m *Match) Settings() Settings   { return m.settings }
func (m *Match) State() *GameState    { return m.state }
func (m *Match) Input() *InputSampler { return m.state.Input }

// PendingActions is the number of scheduled presentation steps still waiting.
func (m *Match) PendingActions() int {
	return m.scheduler.Pending()
}

// Start begins a new match. Only honored while idle.
func (m *Match) Start(now time.Time) bool {
	if m.phase != PhaseIdle {
		return false
	}
	m.scheduler.Begin()
	m.score = Score{}
	m.winner = SideNone
	m.state.ResetPaddles()
	m.state.Serve(m.rng)
	m.phase = PhaseRallying
	m.camera = m.state.Field.CameraHome()

	m.presenter.OnMatchStart()
	m.presenter.OnScoreChanged(0, 0)
	m.presenter.OnCameraReset()
	return true
}

// Tick runs due presentation steps and, while rallying, one simulation step.
func (m *Match) Tick(now time.Time) StepResult {
	m.scheduler.RunDue(now)
	if m.phase != PhaseRallying {
		return StepResult{}
	}
	res := m.state.Step()
	if res.Goal != SideNone {
		m.RegisterGoal(res.Goal, now)
	}
	return res
}

// RegisterGoal credits side with a goal. Goals outside a rally are ignored.
func (m *Match) RegisterGoal(side Side, now time.Time) bool {
	if m.phase != PhaseRallying || (side != SideNear && side != SideFar) {
		return false
	}

	if side == SideNear {
		m.score.Near++
	} else {
		m.score.Far++
	}
	m.presenter.OnScoreChanged(m.score.Near, m.score.Far)
	m.presenter.OnGoal(side)

	if m.score.Of(side) >= WinningScore {
		m.phase = PhaseMatchEnd
		m.winner = side
		m.presenter.OnMatchEnd(side)
		m.beginMatchEndSequence(side, now)
		return true
	}

	m.phase = PhaseGoalPause
	m.beginGoalSequence(side, now)
	return true
}

// Reconfigure applies new settings. The field geometry changes, so this is only
// allowed between matches.
func (m *Match) Reconfigure(s Settings) error {
	if m.phase != PhaseIdle {
		return ErrMatchInProgress
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if err := m.state.Reconfigure(s); err != nil {
		return err
	}
	m.settings = s
	m.camera = m.state.Field.CameraHome()
	m.presenter.OnFieldChanged(s)
	return nil
}

// Abort drops any running sequence and returns to idle with a clean slate.
func (m *Match) Abort() {
	m.scheduler.Begin()
	m.phase = PhaseIdle
	m.score = Score{}
	m.winner = SideNone
	m.state.Input.Release()
	m.state.ResetPaddles()
	m.state.ResetBall()
	m.camera = m.state.Field.CameraHome()
}

// Snapshot copies the state presenters are allowed to see.
func (m *Match) Snapshot() Snapshot {
	return Snapshot{
		Phase:    m.phase,
		Score:    m.score,
		Field:    m.state.Field,
		Ball:     m.state.Ball,
		NearX:    m.state.Near.X,
		FarX:     m.state.Far.X,
		Tick:     m.state.Ticks,
		Winner:   m.winner,
		Settings: m.settings,
		Camera:   m.camera,
	}
}

func (m *Match) panTo(target mgl64.Vec3, d time.Duration) {
	m.camera = target
	m.presenter.OnCameraPan(target, d)
}

func (m *Match) resetCamera() {
	m.camera = m.state.Field.CameraHome()
	m.presenter.OnCameraReset()
}
