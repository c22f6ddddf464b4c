package game

// Phase represents where a match currently is in its lifecycle
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseRallying  Phase = "RALLYING"
	PhaseGoalPause Phase = "GOAL_PAUSE"
	PhaseMatchEnd  Phase = "MATCH_END"
)

// Side identifies one end of the field. The near side is the human player's,
// the far side belongs to the computer paddle.
type Side string

const (
	SideNone Side = ""
	SideNear Side = "NEAR"
	SideFar  Side = "FAR"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	switch s {
	case SideNear:
		return SideFar
	case SideFar:
		return SideNear
	}
	return SideNone
}

// Score holds both goal counters.
type Score struct {
	Near int `json:"near"`
	Far  int `json:"far"`
}

// Of returns the goals scored by side.
func (s Score) Of(side Side) int {
	if side == SideNear {
		return s.Near
	}
	if side == SideFar {
		return s.Far
	}
	return 0
}
