// Command pongsim plays matches headlessly against the computer paddle on a
// synthetic clock and prints a summary.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/playpool/pong3d/internal/config"
	"github.com/playpool/pong3d/internal/game"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
)

// maxMatchTicks stops a match that never ends (e.g. two perfect paddles).
const maxMatchTicks = 200000

type result struct {
	Winner game.Side
	Score  game.Score
	Ticks  int
	Goals  []game.Side
}

// tally records what a headless match would have shown.
type tally struct {
	game.NopPresenter
	goals  []game.Side
	score  game.Score
	final  game.Score
	winner game.Side
	ended  bool
}

func (t *tally) OnGoal(side game.Side)        { t.goals = append(t.goals, side) }
func (t *tally) OnScoreChanged(near, far int) { t.score = game.Score{Near: near, Far: far} }

// OnMatchEnd keeps the deciding score; the match resets it to 0-0 afterwards.
func (t *tally) OnMatchEnd(winner game.Side) {
	t.winner = winner
	t.final = t.score
	t.ended = true
}

// tracker steers the near paddle toward the ball. skill is the chance it
// reacts on a given tick.
type tracker struct {
	skill    float64
	deadzone float64
	rng      *rand.Rand
}

func (tr tracker) press(m *game.Match) {
	in := m.Input()
	if tr.rng.Float64() >= tr.skill {
		in.Release()
		return
	}
	st := m.State()
	dx := st.Ball.Position.X() - st.Near.X
	switch {
	case math.Abs(dx) <= tr.deadzone:
		in.Release()
	case dx > 0:
		in.KeyUp(game.KeyNegative)
		in.KeyDown(game.KeyPositive)
	default:
		in.KeyUp(game.KeyPositive)
		in.KeyDown(game.KeyNegative)
	}
}

func playMatch(s game.Settings, seed int64, skill float64) (result, error) {
	rng := rand.New(rand.NewSource(seed))
	t := &tally{}
	m, err := game.NewMatch(s, t, rng)
	if err != nil {
		return result{}, err
	}

	tr := tracker{skill: skill, deadzone: s.PaddleSpeed, rng: rand.New(rand.NewSource(seed + 1))}
	now := time.Unix(0, 0)
	step := s.TickInterval()
	m.Start(now)

	ticks := 0
	for ticks < maxMatchTicks {
		if t.ended && m.Phase() == game.PhaseIdle {
			break
		}
		tr.press(m)
		now = now.Add(step)
		m.Tick(now)
		ticks++
	}

	final := t.final
	if !t.ended {
		final = t.score
	}
	return result{Winner: t.winner, Score: final, Ticks: ticks, Goals: t.goals}, nil
}

func main() {
	cfg := config.Load()

	matches := flag.Int("matches", 100, "number of matches to play")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	skill := flag.Float64("skill", 0.8, "chance per tick that the near player reacts (0..1)")
	width := flag.Float64("width", cfg.FieldWidth, "field width")
	height := flag.Float64("height", cfg.FieldHeight, "field height")
	speed := flag.Float64("paddle-speed", cfg.PaddleSpeed, "player paddle speed")
	quiet := flag.Bool("quiet", false, "hide the progress bar")
	flag.Parse()

	s := game.SettingsFromConfig(cfg)
	s.FieldWidth, s.FieldHeight, s.PaddleSpeed = *width, *height, *speed
	if err := s.Validate(); err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}
	if *matches <= 0 {
		log.Fatalf("[CONFIG] -matches must be positive")
	}

	var bar *progressbar.ProgressBar
	if !*quiet {
		bar = progressbar.NewOptions(*matches,
			progressbar.OptionSetDescription("playing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	results := make([]result, 0, *matches)
	for i := 0; i < *matches; i++ {
		r, err := playMatch(s, *seed+int64(i)*2, *skill)
		if err != nil {
			log.Fatalf("[GAME] match %d: %v", i, err)
		}
		results = append(results, r)
		if bar != nil {
			bar.Add(1)
		}
	}

	printSummary(results, s)
}

func printSummary(results []result, s game.Settings) {
	wins := lo.CountValuesBy(results, func(r result) game.Side { return r.Winner })
	unfinished := wins[game.SideNone]
	goals := lo.FlatMap(results, func(r result, _ int) []game.Side { return r.Goals })
	perSide := lo.CountValues(goals)
	ticks := lo.Map(results, func(r result, _ int) int { return r.Ticks })
	longest := lo.Max(ticks)
	avg := float64(lo.Sum(ticks)) / float64(len(ticks))
	sweeps := lo.CountBy(results, func(r result) bool {
		return r.Winner != game.SideNone && r.Score.Of(r.Winner.Opponent()) == 0
	})

	fmt.Printf("field %.1fx%.1f, paddle speed %.2f, %d ticks/s\n", s.FieldWidth, s.FieldHeight, s.PaddleSpeed, s.TickRate)
	fmt.Printf("matches:     %d\n", len(results))
	fmt.Printf("near wins:   %d\n", wins[game.SideNear])
	fmt.Printf("far wins:    %d\n", wins[game.SideFar])
	if unfinished > 0 {
		fmt.Printf("unfinished:  %d\n", unfinished)
	}
	fmt.Printf("goals:       near %d, far %d\n", perSide[game.SideNear], perSide[game.SideFar])
	fmt.Printf("3-0 results: %d\n", sweeps)
	fmt.Printf("ticks/match: avg %.0f, max %d (%s simulated)\n", avg, longest,
		(time.Duration(longest) * s.TickInterval()).Round(time.Second))
}
