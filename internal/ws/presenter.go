package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/df-mc/atomic"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/playpool/pong3d/internal/game"
)

// Presenter turns match intents into JSON messages for the browser. Sends never
// block the loop: when the buffer is full the message is dropped and counted.
type Presenter struct {
	matchID string
	out     chan<- []byte
	done    <-chan struct{}
	dropped atomic.Int64
}

// NewPresenter writes to out until done is closed.
func NewPresenter(matchID string, out chan<- []byte, done <-chan struct{}) *Presenter {
	return &Presenter{matchID: matchID, out: out, done: done}
}

// Dropped is the number of messages discarded so far.
func (p *Presenter) Dropped() int64 { return p.dropped.Load() }

func (p *Presenter) send(message interface{}) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message for match %s: %v", p.matchID, err)
		return false
	}

	select {
	case p.out <- data:
		return true
	default:
		// Frames are superseded by the next one; only report other intents
		if n := p.dropped.Inc(); !isFrame(message) || n%100 == 1 {
			log.Printf("[WS] Send buffer full for match %s, dropping message (dropped=%d)", p.matchID, n)
		}
		return false
	}
}

func isFrame(message interface{}) bool {
	m, ok := message.(map[string]interface{})
	return ok && m["type"] == "frame"
}

func (p *Presenter) OnMatchStart() {
	p.send(map[string]interface{}{"type": "match_started"})
}

func (p *Presenter) OnMatchEnd(winner game.Side) {
	p.send(map[string]interface{}{"type": "match_ended", "winner": winner})
}

func (p *Presenter) OnGoal(side game.Side) {
	p.send(map[string]interface{}{"type": "goal", "side": side})
}

func (p *Presenter) OnScoreChanged(near, far int) {
	p.send(map[string]interface{}{"type": "score", "near": near, "far": far})
}

func (p *Presenter) OnCameraPan(target mgl64.Vec3, d time.Duration) {
	p.send(map[string]interface{}{
		"type":        "camera_pan",
		"target":      target,
		"duration_ms": d.Milliseconds(),
	})
}

func (p *Presenter) OnCameraReset() {
	p.send(map[string]interface{}{"type": "camera_reset"})
}

func (p *Presenter) OnRequestSound(name string) {
	p.send(map[string]interface{}{"type": "sound_play", "name": name})
}

func (p *Presenter) OnStopSound(name string) {
	p.send(map[string]interface{}{"type": "sound_stop", "name": name})
}

func (p *Presenter) OnSpectatorsCelebrate(side game.Side) {
	p.send(map[string]interface{}{"type": "spectators_celebrate", "side": side})
}

func (p *Presenter) OnSpectatorsExit(side game.Side) {
	p.send(map[string]interface{}{"type": "spectators_exit", "side": side})
}

func (p *Presenter) OnStandsRecolor(pal game.Palette) {
	p.send(map[string]interface{}{"type": "stands_recolor", "palette": pal})
}

func (p *Presenter) OnBanner(text string) {
	p.send(map[string]interface{}{"type": "banner", "text": text})
}

func (p *Presenter) OnFieldChanged(s game.Settings) {
	p.send(map[string]interface{}{"type": "field_changed", "settings": s})
}

func (p *Presenter) OnFrame(s game.Snapshot) {
	p.send(map[string]interface{}{"type": "frame", "snapshot": s})
}
