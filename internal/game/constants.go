package game

// Simulation constants. Velocities are expressed in field units per tick.
const (
	BallRadius      = 0.5  // side-wall and goal-line margin
	BallHeight      = 1.0  // fixed y of the ball above the field plane
	PaddleHalfWidth = 2.5  // paddle box is 5 units wide
	SaveTolerance   = 0.25 // extra reach on each side of the paddle for saves
	PaddleInset     = 0.25 // paddle center distance from its goal edge
	GoalLineOffset  = 0.75 // goal/save line distance from the goal edge

	SpeedDrift  = 0.0002 // |vz| gained every tick while in play
	ServeSpeedX = 0.1
	ServeSpeedZ = 0.25

	AutopilotInterval  = 45  // ticks between computer direction picks
	AutopilotSpeedDiv  = 4.0 // computer paddle moves at a quarter of the player's speed
	WinningScore       = 3
	DefaultFieldWidth  = 15.0
	DefaultFieldHeight = 25.0
	DefaultPaddleSpeed = 0.3
	DefaultTickRate    = 60
)

// SaveReach is the maximum |ballX - paddleX| for which a paddle still saves.
const SaveReach = PaddleHalfWidth + SaveTolerance

// Sound cues requested from the presentation adapter.
const (
	SoundGoal    = "goal"
	SoundVictory = "victory"
	SoundDefeat  = "defeat"
	SoundCrowd   = "crowd"
)
