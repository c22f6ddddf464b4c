package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Palette names the stand colors used after a match is decided.
type Palette string

const (
	PaletteNeutral Palette = "neutral"
	PaletteNear    Palette = "near"
	PaletteFar     Palette = "far"
)

// PaletteFor returns the palette of the given side.
func PaletteFor(side Side) Palette {
	switch side {
	case SideNear:
		return PaletteNear
	case SideFar:
		return PaletteFar
	}
	return PaletteNeutral
}

// Snapshot is a read-only copy of the match for presenters.
type Snapshot struct {
	Phase    Phase      `json:"phase"`
	Score    Score      `json:"score"`
	Field    Field      `json:"field"`
	Ball     Ball       `json:"ball"`
	NearX    float64    `json:"near_x"`
	FarX     float64    `json:"far_x"`
	Tick     int        `json:"tick"`
	Winner   Side       `json:"winner,omitempty"`
	Settings Settings   `json:"settings"`
	Camera   mgl64.Vec3 `json:"camera"`
}

// Presenter receives the side effects the match requests. Implementations must
// not block: they run on the loop goroutine.
type Presenter interface {
	OnMatchStart()
	OnMatchEnd(winner Side)
	OnGoal(side Side)
	OnScoreChanged(near, far int)
	OnCameraPan(target mgl64.Vec3, duration time.Duration)
	OnCameraReset()
	OnRequestSound(name string)
	OnStopSound(name string)
	OnSpectatorsCelebrate(side Side)
	OnSpectatorsExit(side Side)
	OnStandsRecolor(p Palette)
	OnBanner(text string)
	OnFieldChanged(s Settings)
	OnFrame(s Snapshot)
}

// NopPresenter ignores everything. Embed it to implement only some callbacks.
type NopPresenter struct{}

func (NopPresenter) OnMatchStart()                         {}
func (NopPresenter) OnMatchEnd(Side)                       {}
func (NopPresenter) OnGoal(Side)                           {}
func (NopPresenter) OnScoreChanged(int, int)               {}
func (NopPresenter) OnCameraPan(mgl64.Vec3, time.Duration) {}
func (NopPresenter) OnCameraReset()                        {}
func (NopPresenter) OnRequestSound(string)                 {}
func (NopPresenter) OnStopSound(string)                    {}
func (NopPresenter) OnSpectatorsCelebrate(Side)            {}
func (NopPresenter) OnSpectatorsExit(Side)                 {}
func (NopPresenter) OnStandsRecolor(Palette)               {}
func (NopPresenter) OnBanner(string)                       {}
func (NopPresenter) OnFieldChanged(Settings)               {}
func (NopPresenter) OnFrame(Snapshot)                      {}

// Presenters fans every callback out to each member in order.
type Presenters []Presenter

func (ps Presenters) OnMatchStart() {
	for _, p := range ps {
		p.OnMatchStart()
	}
}

func (ps Presenters) OnMatchEnd(winner Side) {
	for _, p := range ps {
		p.OnMatchEnd(winner)
	}
}

func (ps Presenters) OnGoal(side Side) {
	for _, p := range ps {
		p.OnGoal(side)
	}
}

func (ps Presenters) OnScoreChanged(near, far int) {
	for _, p := range ps {
		p.OnScoreChanged(near, far)
	}
}

func (ps Presenters) OnCameraPan(target mgl64.Vec3, d time.Duration) {
	for _, p := range ps {
		p.OnCameraPan(target, d)
	}
}

func (ps Presenters) OnCameraReset() {
	for _, p := range ps {
		p.OnCameraReset()
	}
}

func (ps Presenters) OnRequestSound(name string) {
	for _, p := range ps {
		p.OnRequestSound(name)
	}
}

func (ps Presenters) OnStopSound(name string) {
	for _, p := range ps {
		p.OnStopSound(name)
	}
}

func (ps Presenters) OnSpectatorsCelebrate(side Side) {
	for _, p := range ps {
		p.OnSpectatorsCelebrate(side)
	}
}

func (ps Presenters) OnSpectatorsExit(side Side) {
	for _, p := range ps {
		p.OnSpectatorsExit(side)
	}
}

func (ps Presenters) OnStandsRecolor(pal Palette) {
	for _, p := range ps {
		p.OnStandsRecolor(pal)
	}
}

func (ps Presenters) OnBanner(text string) {
	for _, p := range ps {
		p.OnBanner(text)
	}
}

func (ps Presenters) OnFieldChanged(s Settings) {
	for _, p := range ps {
		p.OnFieldChanged(s)
	}
}

func (ps Presenters) OnFrame(s Snapshot) {
	for _, p := range ps {
		p.OnFrame(s)
	}
}
