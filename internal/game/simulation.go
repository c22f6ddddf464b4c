package game

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Ball is the single ball in play. Only x and z change; y stays at BallHeight.
type Ball struct {
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
}

// Paddle slides along the x axis in front of its goal.
type Paddle struct {
	Side  Side    `json:"side"`
	X     float64 `json:"x"`
	Speed float64 `json:"speed"`
}

// Saves reports whether a ball at ballX is within the paddle's reach.
// The reach is inclusive so a ball exactly at the edge bounces.
func (p Paddle) Saves(ballX float64) bool {
	return math.Abs(ballX-p.X) <= SaveReach
}

// TryMove shifts the paddle by dx unless that would take it past the side clearance.
func (p *Paddle) TryMove(dx float64, f Field) bool {
	next := p.X + dx
	if next < f.PaddleMinX() || next > f.PaddleMaxX() {
		return false
	}
	p.X = next
	return true
}

// Position is the paddle center in world space.
func (p Paddle) Position(f Field) mgl64.Vec3 {
	z := f.Near() + PaddleInset
	if p.Side == SideFar {
		z = f.Far() - PaddleInset
	}
	return mgl64.Vec3{p.X, BallHeight, z}
}

// Controller drives the computer paddle once per tick.
type Controller interface {
	Steer(p *Paddle, ball Ball, f Field)
}

// StepResult describes what happened during one tick.
type StepResult struct {
	Goal   Side // side that scored, SideNone while the rally continues
	Save   Side // side whose paddle returned the ball this tick
	Bounce bool // ball came off a side wall
}

// GameState is the single record owned by the loop: field, ball, paddles and
// the sources that move the paddles.
type GameState struct {
	Field    Field
	Ball     Ball
	Near     Paddle
	Far      Paddle
	Input    *InputSampler
	Computer Controller
	Ticks    int
}

// NewGameState builds a centered, motionless game on the given settings.
func NewGameState(s Settings, rng *rand.Rand) (*GameState, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	field, err := NewField(s.FieldWidth, s.FieldHeight)
	if err != nil {
		return nil, err
	}
	gs := &GameState{
		Field:    field,
		Near:     Paddle{Side: SideNear, Speed: s.PaddleSpeed},
		Far:      Paddle{Side: SideFar, Speed: s.PaddleSpeed},
		Input:    &InputSampler{},
		Computer: NewAutopilot(rng),
	}
	gs.ResetBall()
	return gs, nil
}

// Step advances the simulation by exactly one tick.
func (gs *GameState) Step() StepResult {
	var res StepResult
	f := gs.Field
	b := &gs.Ball
	gs.Ticks++

	b.Position = b.Position.Add(b.Velocity)
	x, z := b.Position.X(), b.Position.Z()

	// Only flip when heading into the wall so a ball that lingers past the
	// margin for more than one tick is not sent back out of bounds.
	if (x >= f.Right()-BallRadius && b.Velocity[0] > 0) || (x <= f.Left()+BallRadius && b.Velocity[0] < 0) {
		b.Velocity[0] = -b.Velocity[0]
		res.Bounce = true
	}

	if z <= f.Near()+GoalLineOffset && b.Velocity[2] < 0 {
		if !gs.Near.Saves(x) {
			res.Goal = SideFar
			return res
		}
		b.Velocity[2] = -b.Velocity[2]
		res.Save = SideNear
	}

	if z >= f.Far()-GoalLineOffset && b.Velocity[2] > 0 {
		if !gs.Far.Saves(x) {
			res.Goal = SideNear
			return res
		}
		b.Velocity[2] = -b.Velocity[2]
		res.Save = SideFar
	}

	b.Velocity[2] += math.Copysign(SpeedDrift, b.Velocity[2])

	if gs.Computer != nil {
		gs.Computer.Steer(&gs.Far, gs.Ball, f)
	}

	if gs.Input != nil {
		if gs.Input.Held(KeyNegative) {
			gs.Near.TryMove(-gs.Near.Speed, f)
		}
		if gs.Input.Held(KeyPositive) {
			gs.Near.TryMove(gs.Near.Speed, f)
		}
	}

	return res
}

// ResetBall centers the ball with zero velocity. Calling it repeatedly is a no-op.
func (gs *GameState) ResetBall() {
	gs.Ball = Ball{Position: gs.Field.Center()}
}

// ResetPaddles recenters both paddles.
func (gs *GameState) ResetPaddles() {
	gs.Near.X = 0
	gs.Far.X = 0
}

// Serve centers the ball and launches it toward the far side with a random
// horizontal sign.
func (gs *GameState) Serve(rng *rand.Rand) {
	gs.ResetBall()
	vx := ServeSpeedX
	if rng.Intn(2) == 0 {
		vx = -vx
	}
	gs.Ball.Velocity = mgl64.Vec3{vx, 0, ServeSpeedZ}
}

// Reconfigure swaps the field and paddle speed, repositioning everything.
func (gs *GameState) Reconfigure(s Settings) error {
	field, err := NewField(s.FieldWidth, s.FieldHeight)
	if err != nil {
		return err
	}
	gs.Field = field
	gs.Near.Speed = s.PaddleSpeed
	gs.Far.Speed = s.PaddleSpeed
	gs.ResetPaddles()
	gs.ResetBall()
	return nil
}
