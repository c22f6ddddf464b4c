package game

import (
	"fmt"
	"time"

	"github.com/playpool/pong3d/internal/config"
)

// Settings are the per-session values a player can change with the sliders.
type Settings struct {
	FieldWidth         float64       `json:"field_width"`
	FieldHeight        float64       `json:"field_height"`
	PaddleSpeed        float64       `json:"paddle_speed"`
	StandCount         int           `json:"stand_count"`
	SpectatorsPerStand int           `json:"spectators_per_stand"`
	TickRate           int           `json:"tick_rate"`
	GoalPause          time.Duration `json:"goal_pause"`
	MatchEndDuration   time.Duration `json:"match_end_duration"`
}

// DefaultSettings matches the stock field.
func DefaultSettings() Settings {
	return Settings{
		FieldWidth:         DefaultFieldWidth,
		FieldHeight:        DefaultFieldHeight,
		PaddleSpeed:        DefaultPaddleSpeed,
		StandCount:         2,
		SpectatorsPerStand: 24,
		TickRate:           DefaultTickRate,
		GoalPause:          3 * time.Second,
		MatchEndDuration:   9 * time.Second,
	}
}

// SettingsFromConfig builds session defaults from the server config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		FieldWidth:         cfg.FieldWidth,
		FieldHeight:        cfg.FieldHeight,
		PaddleSpeed:        cfg.PaddleSpeed,
		StandCount:         cfg.StandCount,
		SpectatorsPerStand: cfg.SpectatorsPerStand,
		TickRate:           cfg.TickRate,
		GoalPause:          time.Duration(cfg.GoalPauseMillis) * time.Millisecond,
		MatchEndDuration:   time.Duration(cfg.MatchEndMillis) * time.Millisecond,
	}
}

// Validate rejects settings at the configuration boundary.
func (s Settings) Validate() error {
	if _, err := NewField(s.FieldWidth, s.FieldHeight); err != nil {
		return err
	}
	if s.PaddleSpeed <= 0 {
		return fmt.Errorf("%w: paddle speed must be positive", ErrInvalidSettings)
	}
	if s.TickRate <= 0 {
		return fmt.Errorf("%w: tick rate must be positive", ErrInvalidSettings)
	}
	if s.StandCount < 0 || s.SpectatorsPerStand < 0 {
		return fmt.Errorf("%w: stand and spectator counts cannot be negative", ErrInvalidSettings)
	}
	if s.GoalPause <= 0 || s.MatchEndDuration <= 0 {
		return fmt.Errorf("%w: sequence durations must be positive", ErrInvalidSettings)
	}
	return nil
}

// TickInterval is the wall-clock length of one simulation tick.
func (s Settings) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// SettingsPatch is a partial slider update. Nil fields keep their current
// value, so an explicit zero can still be set.
type SettingsPatch struct {
	FieldWidth         *float64       `json:"field_width,omitempty"`
	FieldHeight        *float64       `json:"field_height,omitempty"`
	PaddleSpeed        *float64       `json:"paddle_speed,omitempty"`
	StandCount         *int           `json:"stand_count,omitempty"`
	SpectatorsPerStand *int           `json:"spectators_per_stand,omitempty"`
	TickRate           *int           `json:"tick_rate,omitempty"`
	GoalPause          *time.Duration `json:"goal_pause,omitempty"`
	MatchEndDuration   *time.Duration `json:"match_end_duration,omitempty"`
}

// Apply returns s with every set field of p overlaid. The result is not validated.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.FieldWidth != nil {
		s.FieldWidth = *p.FieldWidth
	}
	if p.FieldHeight != nil {
		s.FieldHeight = *p.FieldHeight
	}
	if p.PaddleSpeed != nil {
		s.PaddleSpeed = *p.PaddleSpeed
	}
	if p.StandCount != nil {
		s.StandCount = *p.StandCount
	}
	if p.SpectatorsPerStand != nil {
		s.SpectatorsPerStand = *p.SpectatorsPerStand
	}
	if p.TickRate != nil {
		s.TickRate = *p.TickRate
	}
	if p.GoalPause != nil {
		s.GoalPause = *p.GoalPause
	}
	if p.MatchEndDuration != nil {
		s.MatchEndDuration = *p.MatchEndDuration
	}
	return s
}
