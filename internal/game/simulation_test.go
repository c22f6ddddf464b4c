package game

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// countingController records how often the computer paddle was steered.
type countingController struct{ calls int }

func (c *countingController) Steer(*Paddle, Ball, Field) { c.calls++ }

func newTestState(t *testing.T) *GameState {
	t.Helper()
	gs, err := NewGameState(DefaultSettings(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewGameState: %v", err)
	}
	gs.Computer = &countingController{}
	return gs
}

func TestDriftIncreasesSpeedKeepingSign(t *testing.T) {
	for _, vz := range []float64{0.25, -0.25, 0.01, -0.4} {
		gs := newTestState(t)
		gs.Ball.Velocity = mgl64.Vec3{0, 0, vz}

		before := gs.Ball.Velocity.Z()
		gs.Step()
		after := gs.Ball.Velocity.Z()

		if math.Abs(after) <= math.Abs(before) {
			t.Errorf("vz=%v: |vz| did not grow (%v -> %v)", vz, before, after)
		}
		if math.Signbit(after) != math.Signbit(before) {
			t.Errorf("vz=%v: sign changed to %v", vz, after)
		}
	}
}

func TestWallFlipsOncePerCrossing(t *testing.T) {
	gs := newTestState(t)
	f := gs.Field
	// Slow ball that lingers past the margin for several ticks
	gs.Ball.Position = mgl64.Vec3{f.Right() - 0.2, BallHeight, 0}
	gs.Ball.Velocity = mgl64.Vec3{0.004, 0, 0.01}

	flips := 0
	for i := 0; i < 20; i++ {
		if gs.Step().Bounce {
			flips++
		}
	}
	if flips != 1 {
		t.Errorf("flipped %d times, want 1", flips)
	}
	if gs.Ball.Velocity.X() >= 0 {
		t.Errorf("ball still heading into the right wall: vx=%v", gs.Ball.Velocity.X())
	}
}

func TestLeftWallFlip(t *testing.T) {
	gs := newTestState(t)
	f := gs.Field
	gs.Ball.Position = mgl64.Vec3{f.Left() + BallRadius + 0.05, BallHeight, 0}
	gs.Ball.Velocity = mgl64.Vec3{-0.1, 0, 0.25}

	if !gs.Step().Bounce {
		t.Fatal("expected a bounce off the left wall")
	}
	if gs.Ball.Velocity.X() != 0.1 {
		t.Errorf("vx = %v, want 0.1", gs.Ball.Velocity.X())
	}
	if gs.Step().Bounce {
		t.Error("second bounce on the way out")
	}
}

// ballAtNearLine places a ball that crosses the near goal line on the next step.
func ballAtNearLine(gs *GameState, x float64) {
	gs.Ball.Position = mgl64.Vec3{x, BallHeight, gs.Field.Near() + GoalLineOffset + 0.1}
	gs.Ball.Velocity = mgl64.Vec3{0, 0, -0.2}
}

func TestSaveAtEdgeOfReach(t *testing.T) {
	gs := newTestState(t)
	gs.Near.X = 0
	ballAtNearLine(gs, SaveReach)

	res := gs.Step()
	if res.Goal != SideNone {
		t.Fatalf("ball at the edge of reach scored for %s", res.Goal)
	}
	if res.Save != SideNear {
		t.Errorf("Save = %q, want NEAR", res.Save)
	}
	if gs.Ball.Velocity.Z() <= 0 {
		t.Errorf("vz = %v, want reflected toward far", gs.Ball.Velocity.Z())
	}
}

func TestGoalJustOutsideReach(t *testing.T) {
	gs := newTestState(t)
	gs.Near.X = 0
	ballAtNearLine(gs, -(SaveReach + 0.01))

	res := gs.Step()
	if res.Goal != SideFar {
		t.Fatalf("Goal = %q, want FAR", res.Goal)
	}
	if gs.Ball.Velocity.Z() != -0.2 {
		t.Errorf("vz changed on a goal: %v", gs.Ball.Velocity.Z())
	}
}

func TestGoalHaltsRestOfStep(t *testing.T) {
	gs := newTestState(t)
	ctrl := gs.Computer.(*countingController)
	gs.Input.KeyDown(KeyPositive)
	gs.Far.X = 0
	gs.Ball.Position = mgl64.Vec3{5, BallHeight, gs.Field.Far() - GoalLineOffset - 0.1}
	gs.Ball.Velocity = mgl64.Vec3{0, 0, 0.2}

	res := gs.Step()
	if res.Goal != SideNear {
		t.Fatalf("Goal = %q, want NEAR", res.Goal)
	}
	if ctrl.calls != 0 {
		t.Error("computer paddle moved on a goal tick")
	}
	if gs.Near.X != 0 {
		t.Errorf("player paddle moved on a goal tick: x=%v", gs.Near.X)
	}
	if gs.Ball.Velocity.Z() != 0.2 {
		t.Errorf("drift applied on a goal tick: vz=%v", gs.Ball.Velocity.Z())
	}
}

func TestFarPaddleSave(t *testing.T) {
	gs := newTestState(t)
	gs.Far.X = 3
	gs.Ball.Position = mgl64.Vec3{2, BallHeight, gs.Field.Far() - GoalLineOffset - 0.1}
	gs.Ball.Velocity = mgl64.Vec3{0, 0, 0.2}

	res := gs.Step()
	if res.Save != SideFar || res.Goal != SideNone {
		t.Fatalf("result = %+v, want far save", res)
	}
	if gs.Ball.Velocity.Z() >= 0 {
		t.Errorf("vz = %v, want reflected toward near", gs.Ball.Velocity.Z())
	}
}

func TestBallMovingAwayIsNotTested(t *testing.T) {
	gs := newTestState(t)
	gs.Near.X = 0
	// Inside the near goal area but already leaving it
	gs.Ball.Position = mgl64.Vec3{6, BallHeight, gs.Field.Near() + 0.5}
	gs.Ball.Velocity = mgl64.Vec3{0, 0, 0.2}

	if res := gs.Step(); res.Goal != SideNone || res.Save != SideNone {
		t.Errorf("result = %+v, want nothing", res)
	}
}

func TestResetBallIdempotent(t *testing.T) {
	gs := newTestState(t)
	gs.Ball = Ball{Position: mgl64.Vec3{3, BallHeight, -4}, Velocity: mgl64.Vec3{0.1, 0, 0.3}}

	gs.ResetBall()
	first := gs.Ball
	gs.ResetBall()
	gs.ResetBall()

	if gs.Ball != first {
		t.Errorf("ResetBall not idempotent: %+v vs %+v", gs.Ball, first)
	}
	if first.Position != gs.Field.Center() || first.Velocity != (mgl64.Vec3{}) {
		t.Errorf("ResetBall = %+v, want centered and still", first)
	}
}

func TestServe(t *testing.T) {
	gs := newTestState(t)
	rng := rand.New(rand.NewSource(7))
	seen := map[float64]bool{}
	for i := 0; i < 50; i++ {
		gs.Serve(rng)
		if gs.Ball.Position != gs.Field.Center() {
			t.Fatalf("serve from %v, want center", gs.Ball.Position)
		}
		if gs.Ball.Velocity.Z() != ServeSpeedZ {
			t.Fatalf("serve vz = %v", gs.Ball.Velocity.Z())
		}
		seen[gs.Ball.Velocity.X()] = true
	}
	if !seen[ServeSpeedX] || !seen[-ServeSpeedX] {
		t.Errorf("serve directions seen: %v", seen)
	}
}

func TestFreeFlightRecurrence(t *testing.T) {
	gs := newTestState(t)
	gs.ResetBall()
	gs.Ball.Velocity = mgl64.Vec3{ServeSpeedX, 0, ServeSpeedZ}

	const n = 40
	x, z, vz := 0.0, 0.0, ServeSpeedZ
	for i := 0; i < n; i++ {
		x += ServeSpeedX
		z += vz
		vz += SpeedDrift

		if res := gs.Step(); res != (StepResult{}) {
			t.Fatalf("tick %d: unexpected event %+v", i, res)
		}
	}

	const eps = 1e-9
	if math.Abs(gs.Ball.Position.X()-x) > eps || math.Abs(gs.Ball.Position.Z()-z) > eps {
		t.Errorf("position = (%v, %v), want (%v, %v)", gs.Ball.Position.X(), gs.Ball.Position.Z(), x, z)
	}
	if want := n*ServeSpeedZ + SpeedDrift*n*(n-1)/2; math.Abs(z-want) > eps {
		t.Errorf("closed form z = %v, recurrence %v", want, z)
	}
	if gs.Ball.Position.Y() != BallHeight {
		t.Errorf("y = %v, want %v", gs.Ball.Position.Y(), BallHeight)
	}
}

func TestPlayerPaddleStopsAtLeftClearance(t *testing.T) {
	gs := newTestState(t)
	f := gs.Field
	gs.Near.X = f.PaddleMinX() + 0.1
	gs.Input.KeyDown(KeyNegative)

	for i := 0; i < 30; i++ {
		gs.Step()
		if gs.Near.X < f.PaddleMinX() {
			t.Fatalf("tick %d: paddle at %v crossed %v", i, gs.Near.X, f.PaddleMinX())
		}
	}
}

func TestPlayerPaddleMovesFullStep(t *testing.T) {
	gs := newTestState(t)
	gs.Input.KeyDown(KeyPositive)
	gs.Step()
	if gs.Near.X != DefaultPaddleSpeed {
		t.Errorf("paddle x = %v, want %v", gs.Near.X, DefaultPaddleSpeed)
	}
	gs.Input.KeyUp(KeyPositive)
	gs.Step()
	if gs.Near.X != DefaultPaddleSpeed {
		t.Errorf("paddle moved with no key held: %v", gs.Near.X)
	}
}

func TestReconfigureRebuildsField(t *testing.T) {
	gs := newTestState(t)
	gs.Near.X = 2
	s := DefaultSettings()
	s.FieldWidth, s.FieldHeight, s.PaddleSpeed = 30, 40, 0.5

	if err := gs.Reconfigure(s); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if gs.Field.Right() != 15 || gs.Field.Far() != 20 {
		t.Errorf("edges = %v/%v", gs.Field.Right(), gs.Field.Far())
	}
	if gs.Near.X != 0 || gs.Near.Speed != 0.5 || gs.Far.Speed != 0.5 {
		t.Errorf("paddles not reset: %+v %+v", gs.Near, gs.Far)
	}
}
