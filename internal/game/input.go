package game

import (
	"fmt"

	"github.com/df-mc/atomic"
)

// Key is a player control.
type Key string

const (
	KeyNegative Key = "negative" // move toward -x
	KeyPositive Key = "positive" // move toward +x
)

// ParseKey maps a wire name onto a Key.
func ParseKey(s string) (Key, error) {
	switch Key(s) {
	case KeyNegative, KeyPositive:
		return Key(s), nil
	case "left":
		return KeyNegative, nil
	case "right":
		return KeyPositive, nil
	}
	return "", fmt.Errorf("unknown key %q", s)
}

// InputSampler tracks which paddle keys are currently held. It is written from
// the connection goroutine and read once per tick by the loop.
type InputSampler struct {
	negative atomic.Bool
	positive atomic.Bool
}

func (in *InputSampler) flag(k Key) *atomic.Bool {
	if k == KeyNegative {
		return &in.negative
	}
	return &in.positive
}

func (in *InputSampler) KeyDown(k Key) { in.flag(k).Store(true) }
func (in *InputSampler) KeyUp(k Key)   { in.flag(k).Store(false) }

// Held reports whether k is currently pressed.
func (in *InputSampler) Held(k Key) bool {
	return in.flag(k).Load()
}

// Release lifts both keys, e.g. when the connection drops.
func (in *InputSampler) Release() {
	in.negative.Store(false)
	in.positive.Store(false)
}
