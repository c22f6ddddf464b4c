package game

import "math/rand"

// Autopilot is the computer paddle: it drifts in a random direction, picks a
// new one every AutopilotInterval ticks and turns around at the side clearance.
type Autopilot struct {
	rng       *rand.Rand
	countdown int
	direction float64
}

func NewAutopilot(rng *rand.Rand) *Autopilot {
	return &Autopilot{rng: rng, direction: 1}
}

// Steer moves the paddle one quarter-speed step.
func (a *Autopilot) Steer(p *Paddle, _ Ball, f Field) {
	a.countdown--
	if a.countdown <= 0 {
		a.countdown = AutopilotInterval
		if a.rng.Intn(2) == 0 {
			a.direction = -1
		} else {
			a.direction = 1
		}
	}

	step := a.direction * p.Speed / AutopilotSpeedDiv
	if !p.TryMove(step, f) {
		a.direction = -a.direction
		p.TryMove(-step, f)
	}
}

// Direction is -1 or +1.
func (a *Autopilot) Direction() float64 {
	return a.direction
}
